// Package transcript журнал чата комнаты в порядке получения.
package transcript

import (
	"time"

	"github.com/iudanet/studyroom/internal/models"
)

// maxPending ограничивает число неподтвержденных собственных сообщений
const maxPending = 256

// Options настройки журнала
type Options struct {
	// Capacity максимальное число записей; 0 означает без ограничения.
	// При переполнении удаляется самая старая запись.
	Capacity int
	// SuppressOwnEcho отбрасывает серверное эхо собственных сообщений по client_id
	SuppressOwnEcho bool
}

// Transcript упорядоченный журнал записей System/Own/Other.
// Не потокобезопасен.
type Transcript struct {
	pending map[string]struct{}
	entries []models.ChatMessage
	queue   []string // порядок pending для вытеснения
	head    int      // индекс самой старой записи в кольцевом буфере
	opts    Options
}

// New создает пустой журнал
func New(opts Options) *Transcript {
	if opts.Capacity < 0 {
		opts.Capacity = 0
	}
	return &Transcript{
		opts:    opts,
		pending: make(map[string]struct{}),
	}
}

// AppendSystem добавляет системное сообщение
func (t *Transcript) AppendSystem(text string, at time.Time) {
	t.append(models.ChatMessage{Kind: models.ChatSystem, Text: text, Timestamp: at})
}

// AppendOwn добавляет собственное сообщение сразу после отправки
func (t *Transcript) AppendOwn(clientID, text, sender string, at time.Time) {
	if t.opts.SuppressOwnEcho && clientID != "" {
		t.remember(clientID)
	}
	t.append(models.ChatMessage{
		Kind:      models.ChatOwn,
		ID:        clientID,
		Text:      text,
		Sender:    sender,
		Timestamp: at,
	})
}

// AppendReceived добавляет сообщение, пришедшее от сервера.
// Возвращает false, если это эхо собственного сообщения и оно подавлено.
func (t *Transcript) AppendReceived(clientID, text, sender string, at time.Time) bool {
	if t.opts.SuppressOwnEcho && clientID != "" {
		if _, own := t.pending[clientID]; own {
			t.forget(clientID)
			return false
		}
	}
	t.append(models.ChatMessage{
		Kind:      models.ChatOther,
		ID:        clientID,
		Text:      text,
		Sender:    sender,
		Timestamp: at,
	})
	return true
}

// Entries возвращает копию записей от старой к новой
func (t *Transcript) Entries() []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(t.entries))
	out = append(out, t.entries[t.head:]...)
	out = append(out, t.entries[:t.head]...)
	return out
}

// Last возвращает последнюю запись
func (t *Transcript) Last() (models.ChatMessage, bool) {
	if len(t.entries) == 0 {
		return models.ChatMessage{}, false
	}
	i := t.head - 1
	if i < 0 {
		i = len(t.entries) - 1
	}
	return t.entries[i], true
}

// Len возвращает число записей
func (t *Transcript) Len() int {
	return len(t.entries)
}

func (t *Transcript) append(m models.ChatMessage) {
	if t.opts.Capacity == 0 || len(t.entries) < t.opts.Capacity {
		t.entries = append(t.entries, m)
		return
	}
	// Буфер заполнен: перезаписываем самую старую запись
	t.entries[t.head] = m
	t.head = (t.head + 1) % len(t.entries)
}

func (t *Transcript) remember(id string) {
	if len(t.queue) >= maxPending {
		t.forget(t.queue[0])
	}
	t.pending[id] = struct{}{}
	t.queue = append(t.queue, id)
}

func (t *Transcript) forget(id string) {
	delete(t.pending, id)
	for i, q := range t.queue {
		if q == id {
			t.queue = append(t.queue[:i], t.queue[i+1:]...)
			return
		}
	}
}
