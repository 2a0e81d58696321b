package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// ConnServer обслуживает WebSocket подключение до его закрытия
type ConnServer interface {
	ServeConn(ctx context.Context, conn *websocket.Conn)
}

// WSHandler переводит запрос на WebSocket и передает подключение в hub
type WSHandler struct {
	logger   *slog.Logger
	hub      ConnServer
	upgrader websocket.Upgrader
}

// NewWSHandler создает handler для GET /ws
func NewWSHandler(logger *slog.Logger, hub ConnServer) *WSHandler {
	return &WSHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Комнаты открыты по коду, клиенты подключаются с любого origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve обрабатывает GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже отправил ответ с ошибкой
		h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}
	h.hub.ServeConn(r.Context(), conn)
}
