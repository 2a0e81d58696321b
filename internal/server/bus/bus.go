// Package bus доставляет события комнат всем экземплярам сервера.
package bus

import (
	"context"

	"github.com/iudanet/studyroom/pkg/api"
)

// Message событие для рассылки участникам комнаты
type Message struct {
	Envelope api.Envelope `json:"envelope"`
	RoomCode string       `json:"room_code"`
	// Exclude идентификатор подключения, которому событие не отправляется
	Exclude string `json:"exclude,omitempty"`
}

// Handler получает каждое опубликованное сообщение
type Handler func(Message)

// Bus публикует сообщения и доставляет их подписчику
type Bus interface {
	// Subscribe регистрирует обработчик. Вызывается один раз до Publish.
	Subscribe(ctx context.Context, h Handler) error
	Publish(ctx context.Context, msg Message) error
	Close() error
}
