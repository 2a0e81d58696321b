package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/studyroom/internal/client/iocli"
	"github.com/iudanet/studyroom/internal/client/storage"
	"github.com/iudanet/studyroom/internal/validation"
)

// DefaultTTL время жизни сохраненной сессии
const DefaultTTL = 12 * time.Hour

// Bootstrap определяет отображаемое имя до любого сетевого вызова.
// Сохраненное имя используется молча, иначе пользователь вводит его с клавиатуры.
type Bootstrap struct {
	store  storage.SessionStorage
	io     iocli.IO
	logger *slog.Logger
	now    func() time.Time
	preset string
	ttl    time.Duration
}

// Option настраивает Bootstrap
type Option func(*Bootstrap)

// WithPreset задает имя, переданное флагом или переменной окружения.
// Оно имеет приоритет над сохраненным.
func WithPreset(name string) Option {
	return func(b *Bootstrap) { b.preset = name }
}

// WithTTL задает время жизни сессии
func WithTTL(ttl time.Duration) Option {
	return func(b *Bootstrap) { b.ttl = ttl }
}

// NewBootstrap создает Bootstrap
func NewBootstrap(logger *slog.Logger, store storage.SessionStorage, io iocli.IO, opts ...Option) *Bootstrap {
	b := &Bootstrap{
		store:  store,
		io:     io,
		logger: logger,
		now:    time.Now,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resolve возвращает отображаемое имя текущей сессии.
// Пустое имя отклоняется с сообщением и запрашивается повторно.
func (b *Bootstrap) Resolve(ctx context.Context) (string, error) {
	if b.preset != "" {
		name, err := validation.ValidateDisplayName(b.preset)
		if err != nil {
			return "", err
		}
		if err := b.Remember(ctx, name, ""); err != nil {
			return "", err
		}
		return name, nil
	}

	sess, err := b.store.GetSession(ctx)
	switch {
	case err == nil:
		b.logger.Debug("Using stored display name", "username", sess.Username)
		return sess.Username, nil
	case errors.Is(err, storage.ErrSessionNotFound):
	default:
		return "", fmt.Errorf("failed to load session: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		input, err := b.io.ReadInput("Enter your name: ")
		if err != nil {
			return "", fmt.Errorf("failed to read name: %w", err)
		}

		name, err := validation.ValidateDisplayName(input)
		if err != nil {
			var vErr *validation.Error
			if errors.As(err, &vErr) {
				b.io.Println(vErr.Message)
				continue
			}
			return "", err
		}

		if err := b.Remember(ctx, name, ""); err != nil {
			return "", err
		}
		return name, nil
	}
}

// Remember сохраняет имя (и комнату) на время сессии
func (b *Bootstrap) Remember(ctx context.Context, name, roomCode string) error {
	now := b.now()
	sess := &storage.Session{
		Username:  name,
		RoomCode:  roomCode,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(b.ttl).Unix(),
	}
	if err := b.store.SaveSession(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	b.logger.Debug("Session saved", "username", name, "room_code", roomCode)
	return nil
}

// Current возвращает текущую сессию
func (b *Bootstrap) Current(ctx context.Context) (*storage.Session, error) {
	return b.store.GetSession(ctx)
}

// Forget удаляет сохраненную сессию. Отсутствие сессии не считается ошибкой.
func (b *Bootstrap) Forget(ctx context.Context) error {
	err := b.store.DeleteSession(ctx)
	if err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
