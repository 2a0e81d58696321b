package bus

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSubscriber сообщение опубликовано до Subscribe
var ErrNoSubscriber = errors.New("bus has no subscriber")

// Local доставляет сообщения синхронно внутри одного процесса
type Local struct {
	handler Handler
	mu      sync.RWMutex
}

func NewLocal() *Local {
	return &Local{}
}

func (l *Local) Subscribe(_ context.Context, h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
	return nil
}

func (l *Local) Publish(_ context.Context, msg Message) error {
	l.mu.RLock()
	h := l.handler
	l.mu.RUnlock()

	if h == nil {
		return ErrNoSubscriber
	}
	h(msg)
	return nil
}

func (l *Local) Close() error {
	return nil
}
