package models

import "time"

// ChatKind определяет, кем отправлено сообщение чата
type ChatKind int

const (
	ChatSystem ChatKind = iota // системное сообщение (вход, выход, документ)
	ChatOwn                    // собственное сообщение, добавленное оптимистично
	ChatOther                  // сообщение, полученное от сервера
)

// String implements fmt.Stringer.
func (k ChatKind) String() string {
	switch k {
	case ChatSystem:
		return "system"
	case ChatOwn:
		return "own"
	case ChatOther:
		return "other"
	default:
		return "unknown"
	}
}

// ChatMessage представляет одну запись журнала чата.
// Порядок записей определяется порядком получения, а не логическими часами.
type ChatMessage struct {
	Timestamp time.Time
	ID        string // client_id для собственных сообщений и их эха
	Text      string
	Sender    string // пусто для системных сообщений
	Kind      ChatKind
}
