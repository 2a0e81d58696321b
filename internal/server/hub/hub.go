// Package hub связывает WebSocket подключения с комнатами.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/bus"
	"github.com/iudanet/studyroom/internal/server/metrics"
	"github.com/iudanet/studyroom/internal/server/storage"
	"github.com/iudanet/studyroom/pkg/api"
)

// ErrClosed hub остановлен
var ErrClosed = errors.New("hub closed")

// Hub хранит участников комнат этого экземпляра и рассылает им события.
// Число участников (user_count) считается по подключениям этого экземпляра.
type Hub struct {
	store  storage.Storage
	bus    bus.Bus
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
	// rooms: код комнаты -> подключение -> имя участника
	rooms   map[string]map[*Client]string
	clients map[*Client]struct{}
	mu      sync.RWMutex
	closed  bool
}

// Option настраивает Hub
type Option func(*Hub)

// WithClock задает источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// New создает Hub и подписывает его на шину
func New(ctx context.Context, logger *slog.Logger, store storage.Storage, b bus.Bus, opts ...Option) (*Hub, error) {
	h := &Hub{
		store:   store,
		bus:     b,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		rooms:   make(map[string]map[*Client]string),
		clients: make(map[*Client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := b.Subscribe(ctx, h.deliver); err != nil {
		return nil, fmt.Errorf("failed to subscribe hub: %w", err)
	}
	return h, nil
}

// ServeConn обслуживает подключение до его закрытия
func (h *Hub) ServeConn(ctx context.Context, conn *websocket.Conn) {
	c := newClient(h.newID(), conn, h.logger)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.ConnectedClients.Inc()
	c.logger.Debug("Client connected", "remote_addr", conn.RemoteAddr().String())

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	c.readLoop(func(c *Client, env api.Envelope) {
		h.route(ctx, c, env)
	})

	h.disconnect(ctx, c)
	<-done

	metrics.ConnectedClients.Dec()
	c.logger.Debug("Client disconnected")
}

// disconnect убирает подключение из всех комнат и сообщает остальным
func (h *Hub) disconnect(ctx context.Context, c *Client) {
	type departure struct {
		code     string
		username string
		count    int
	}
	var left []departure

	h.mu.Lock()
	delete(h.clients, c)
	for code, members := range h.rooms {
		username, ok := members[c]
		if !ok {
			continue
		}
		delete(members, c)
		left = append(left, departure{code: code, username: username, count: len(members)})
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	h.mu.Unlock()

	c.close()

	for _, d := range left {
		h.logger.Info("User left room", "room_code", d.code, "username", d.username)
		h.publish(ctx, d.code, api.EventUserLeft,
			api.PresencePayload{Username: d.username, UserCount: d.count}, "")
	}
}

// deliver отправляет сообщение шины участникам комнаты
func (h *Hub) deliver(msg bus.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[msg.RoomCode] {
		if c.id == msg.Exclude {
			continue
		}
		c.push(msg.Envelope)
	}
}

func (h *Hub) publish(ctx context.Context, roomCode, event string, payload any, exclude string) {
	env, err := api.NewEnvelope(event, payload)
	if err != nil {
		h.logger.Error("Failed to encode event", "event", event, "error", err)
		return
	}

	msg := bus.Message{RoomCode: roomCode, Envelope: env, Exclude: exclude}
	if err := h.bus.Publish(ctx, msg); err != nil {
		metrics.BusPublishErrors.Inc()
		h.logger.Error("Failed to publish event", "event", event, "room_code", roomCode, "error", err)
	}
}

// BroadcastDocument сообщает комнате о новом документе
func (h *Hub) BroadcastDocument(ctx context.Context, doc *models.Document) {
	h.publish(ctx, doc.RoomCode, api.EventPDFUploaded, api.DocumentFromModel(doc), "")
}

// UserCount число участников комнаты на этом экземпляре
func (h *Hub) UserCount(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}

// Close закрывает все подключения. Новые подключения отклоняются.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	return nil
}
