package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iudanet/studyroom/internal/server/metrics"
	"github.com/iudanet/studyroom/pkg/api"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxFrameSize   = 1 << 20
	sendBufferSize = 64
)

// Client одно WebSocket подключение
type Client struct {
	conn   *websocket.Conn
	send   chan api.Envelope
	logger *slog.Logger
	id     string
	mu     sync.Mutex
	closed bool
}

func newClient(id string, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		logger: logger.With("conn_id", id),
		send:   make(chan api.Envelope, sendBufferSize),
	}
}

// ID идентификатор подключения
func (c *Client) ID() string {
	return c.id
}

// readLoop читает события до ошибки чтения и передает их в route
func (c *Client) readLoop(route func(*Client, api.Envelope)) {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Read failed", "error", err)
			}
			return
		}

		var env api.Envelope
		if err := json.Unmarshal(payload, &env); err != nil || env.Event == "" {
			c.pushError("Invalid message format")
			continue
		}
		route(c, env)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// push ставит событие в очередь отправки.
// Каждое событие меняет состояние клиента, поэтому при переполнении
// очереди медленный клиент отключается: после переподключения он получит
// свежий room_joined.
func (c *Client) push(env api.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- env:
	default:
		c.closed = true
		close(c.send)
		metrics.SlowClientsClosed.Inc()
		c.logger.Warn("Send buffer full, closing slow client", "client_id", c.id)
	}
}

func (c *Client) pushEvent(event string, payload any) {
	env, err := api.NewEnvelope(event, payload)
	if err != nil {
		c.logger.Error("Failed to encode event", "event", event, "error", err)
		return
	}
	c.push(env)
}

func (c *Client) pushError(message string) {
	c.pushEvent(api.EventError, api.ErrorPayload{Message: message})
}

// close закрывает очередь; writeLoop отправит close frame и закроет соединение
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
