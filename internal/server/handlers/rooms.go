package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/metrics"
	"github.com/iudanet/studyroom/internal/server/storage"
	"github.com/iudanet/studyroom/internal/validation"
	"github.com/iudanet/studyroom/pkg/api"
)

const (
	defaultUsername = "Anonymous"

	// попыток подобрать свободный код комнаты
	createRoomAttempts = 5
)

// RoomHandler обрабатывает создание комнат и вход в них
type RoomHandler struct {
	logger  *slog.Logger
	rooms   storage.RoomStorage
	newCode func() string
	now     func() time.Time
}

// NewRoomHandler создает новый handler для комнат
func NewRoomHandler(logger *slog.Logger, rooms storage.RoomStorage) *RoomHandler {
	return &RoomHandler{
		logger:  logger,
		rooms:   rooms,
		newCode: GenerateRoomCode,
		now:     time.Now,
	}
}

// GenerateRoomCode возвращает код из 8 символов [0-9A-F]
func GenerateRoomCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// decodeOptional декодирует тело запроса; пустое тело допустимо
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// resolveUsername возвращает имя участника или "Anonymous"
func resolveUsername(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return defaultUsername, nil
	}
	return validation.ValidateDisplayName(name)
}

// CreateRoom обрабатывает POST /api/create_room
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateRoomRequest
	if err := decodeOptional(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create room request", slog.Any("error", err))
		sendError(w, h.logger, "Invalid request body", http.StatusBadRequest)
		return
	}

	username, err := resolveUsername(req.Username)
	if err != nil {
		sendError(w, h.logger, validationMessage(err), http.StatusBadRequest)
		return
	}

	for attempt := 0; attempt < createRoomAttempts; attempt++ {
		room := &models.Room{
			Code:      h.newCode(),
			Creator:   username,
			CreatedAt: h.now(),
		}

		err := h.rooms.CreateRoom(ctx, room)
		if errors.Is(err, storage.ErrRoomAlreadyExists) {
			continue
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to create room", slog.Any("error", err))
			sendError(w, h.logger, "Internal server error", http.StatusInternalServerError)
			return
		}

		metrics.RoomsCreated.Inc()
		h.logger.InfoContext(ctx, "room created",
			slog.String("room_code", room.Code),
			slog.String("creator", username))

		sendJSON(w, h.logger, api.RoomResponse{
			Success:  true,
			RoomCode: room.Code,
			Message:  fmt.Sprintf("Room %s created successfully", room.Code),
		}, http.StatusOK)
		return
	}

	h.logger.ErrorContext(ctx, "no free room code", slog.Int("attempts", createRoomAttempts))
	sendError(w, h.logger, "Internal server error", http.StatusInternalServerError)
}

// JoinRoom обрабатывает POST /api/join_room
// Проверяет, что комната существует. Вход выполняется по WebSocket.
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.JoinRoomRequest
	if err := decodeOptional(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode join room request", slog.Any("error", err))
		sendError(w, h.logger, "Invalid request body", http.StatusBadRequest)
		return
	}

	code := validation.NormalizeRoomCode(req.RoomCode)
	if code == "" {
		sendError(w, h.logger, "Room not found", http.StatusNotFound)
		return
	}

	if _, err := h.rooms.GetRoom(ctx, code); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			h.logger.InfoContext(ctx, "room not found", slog.String("room_code", code))
			sendError(w, h.logger, "Room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get room", slog.Any("error", err))
		sendError(w, h.logger, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, api.RoomResponse{
		Success:  true,
		RoomCode: code,
		Message:  fmt.Sprintf("Ready to join room %s", code),
	}, http.StatusOK)
}

// RoomInfo обрабатывает GET /room/{code}
func (h *RoomHandler) RoomInfo(w http.ResponseWriter, r *http.Request) {
	code := validation.NormalizeRoomCode(chi.URLParam(r, "code"))

	if _, err := h.rooms.GetRoom(r.Context(), code); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get room", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, h.logger, api.RoomInfoResponse{RoomCode: code}, http.StatusOK)
}

func validationMessage(err error) string {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return vErr.Message
	}
	return err.Error()
}
