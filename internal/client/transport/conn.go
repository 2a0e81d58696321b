package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"github.com/iudanet/studyroom/pkg/api"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	maxFrameSize = 1 << 20
)

// ErrNotConnected соединение сейчас отсутствует; исходящие события не буферизуются
var ErrNotConnected = errors.New("not connected")

// Handler получает события жизненного цикла соединения и входящие конверты.
// Все вызовы происходят из одной горутины (Run), в порядке получения.
type Handler interface {
	OnConnect()
	OnDisconnect(err error)
	OnEnvelope(env api.Envelope)
}

// Conn real-time соединение с сервером комнат с автоматическим переподключением
type Conn struct {
	handler    Handler
	logger     *slog.Logger
	dialer     *websocket.Dialer
	ws         *websocket.Conn
	newBackOff func() backoff.BackOff
	header     http.Header
	url        string
	mu         sync.RWMutex
	writeMu    sync.Mutex
}

// Option настраивает Conn
type Option func(*Conn)

// WithBackOff задает политику задержек между попытками подключения
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Conn) { c.newBackOff = newBackOff }
}

// WithDialer задает websocket.Dialer
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Conn) { c.dialer = d }
}

// New создает соединение. Подключение начинается в Run.
func New(logger *slog.Logger, url string, handler Handler, opts ...Option) *Conn {
	c := &Conn{
		handler:    handler,
		logger:     logger,
		dialer:     websocket.DefaultDialer,
		newBackOff: DefaultBackOff,
		header:     http.Header{},
		url:        url,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultBackOff экспоненциальная задержка 500ms..30s без ограничения общего времени
func DefaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Run держит соединение открытым до отмены ctx.
// После обрыва вызывает OnDisconnect и переподключается с backoff.
func (c *Conn) Run(ctx context.Context) error {
	for {
		ws, err := c.dial(ctx)
		if err != nil {
			return c.dialFailed(ctx, err)
		}

		c.setConn(ws)
		c.logger.Debug("Connected", "url", c.url)
		c.handler.OnConnect()

		err = c.serve(ctx, ws)

		c.setConn(nil)
		_ = ws.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("Connection lost", "error", err)
		c.handler.OnDisconnect(err)
	}
}

// dialFailed решает, чем завершить Run после неудачного dial.
// backoff останавливается раньше срока ctx, если следующая попытка
// не успеет до дедлайна: тогда Run дожидается дедлайна.
// Остановка backoff без дедлайна (ограниченный BackOff) возвращает ошибку dial.
func (c *Conn) dialFailed(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if _, ok := ctx.Deadline(); ok {
		c.logger.Debug("No reconnect attempt fits before deadline", "error", err)
		<-ctx.Done()
		return ctx.Err()
	}
	return fmt.Errorf("failed to connect: %w", err)
}

// dial подключается, повторяя попытки до успеха или отмены ctx
func (c *Conn) dial(ctx context.Context) (*websocket.Conn, error) {
	var ws *websocket.Conn

	operation := func() error {
		conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			return fmt.Errorf("dial %s: %w", c.url, err)
		}
		ws = conn
		return nil
	}
	notify := func(err error, next time.Duration) {
		c.logger.Debug("Reconnect attempt failed", "error", err, "retry_in", next)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		if ws != nil {
			_ = ws.Close()
		}
		return nil, ctx.Err()
	}
	return ws, nil
}

// serve читает кадры, пока соединение живо
func (c *Conn) serve(ctx context.Context, ws *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)

	// Закрываем соединение при отмене ctx, чтобы разблокировать чтение
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.Close()
		case <-done:
		}
	}()

	go c.pingLoop(ws, done)

	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env api.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if isDecodeError(err) {
				// Кадр прочитан целиком, соединение живо
				c.logger.Warn("Dropping malformed frame", "error", err)
				continue
			}
			return err
		}
		if env.Event == "" {
			c.logger.Debug("Dropping frame without event name")
			continue
		}
		c.handler.OnEnvelope(env)
	}
}

func (c *Conn) pingLoop(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// Emit отправляет событие. Без активного соединения возвращает ErrNotConnected.
func (c *Conn) Emit(event string, payload any) error {
	ws := c.conn()
	if ws == nil {
		return ErrNotConnected
	}

	env, err := api.NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(env); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// Connected сообщает, есть ли сейчас соединение
func (c *Conn) Connected() bool {
	return c.conn() != nil
}

func (c *Conn) conn() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ws
}

func (c *Conn) setConn(ws *websocket.Conn) {
	c.mu.Lock()
	c.ws = ws
	c.mu.Unlock()
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
