package hub

import (
	"context"
	"errors"
	"strings"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/metrics"
	"github.com/iudanet/studyroom/internal/server/storage"
	"github.com/iudanet/studyroom/internal/validation"
	"github.com/iudanet/studyroom/pkg/api"
)

const (
	defaultUsername = "Anonymous"

	msgRoomNotFound  = "Room not found"
	msgInvalidData   = "Invalid event data"
	msgInternalError = "Internal server error"
)

// route выполняет событие клиента
func (h *Hub) route(ctx context.Context, c *Client, env api.Envelope) {
	metrics.EventsReceived.WithLabelValues(env.Event).Inc()

	switch env.Event {
	case api.EventJoinStudyRoom:
		var req api.JoinStudyRoomRequest
		if h.decode(c, env, &req) {
			h.joinRoom(ctx, c, req)
		}
	case api.EventSendMessage:
		var req api.SendMessageRequest
		if h.decode(c, env, &req) {
			h.sendMessage(ctx, c, req)
		}
	case api.EventAddAnnotation:
		var req api.AddAnnotationRequest
		if h.decode(c, env, &req) {
			h.addAnnotation(ctx, c, req)
		}
	case api.EventUpdateAnnotation:
		var req api.UpdateAnnotationRequest
		if h.decode(c, env, &req) {
			h.updateAnnotation(ctx, c, req)
		}
	case api.EventDeleteAnnotation:
		var req api.DeleteAnnotationRequest
		if h.decode(c, env, &req) {
			h.deleteAnnotation(ctx, c, req)
		}
	default:
		c.logger.Debug("Unknown event", "event", env.Event)
		c.pushError("Unknown event: " + env.Event)
	}
}

func (h *Hub) decode(c *Client, env api.Envelope, v any) bool {
	if err := env.Decode(v); err != nil {
		c.logger.Debug("Invalid event payload", "event", env.Event, "error", err)
		c.pushError(msgInvalidData)
		return false
	}
	return true
}

// roomExists проверяет комнату; при ошибке отправляет клиенту событие error
func (h *Hub) roomExists(ctx context.Context, c *Client, code string) bool {
	_, err := h.store.GetRoom(ctx, code)
	if err == nil {
		return true
	}
	if errors.Is(err, storage.ErrRoomNotFound) {
		c.pushError(msgRoomNotFound)
		return false
	}
	c.logger.Error("Failed to get room", "room_code", code, "error", err)
	c.pushError(msgInternalError)
	return false
}

func usernameOrDefault(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultUsername
	}
	return name
}

func (h *Hub) joinRoom(ctx context.Context, c *Client, req api.JoinStudyRoomRequest) {
	code := validation.NormalizeRoomCode(req.RoomCode)
	username := usernameOrDefault(req.Username)

	if !h.roomExists(ctx, c, code) {
		return
	}

	// Снимок и регистрация под одной блокировкой: рассылки комнаты
	// доходят до нового участника только после room_joined
	h.mu.Lock()
	docs, err := h.store.ListDocuments(ctx, code)
	if err != nil {
		h.mu.Unlock()
		c.logger.Error("Failed to list documents", "room_code", code, "error", err)
		c.pushError(msgInternalError)
		return
	}
	anns, err := h.store.ListAnnotations(ctx, code)
	if err != nil {
		h.mu.Unlock()
		c.logger.Error("Failed to list annotations", "room_code", code, "error", err)
		c.pushError(msgInternalError)
		return
	}

	members, ok := h.rooms[code]
	if !ok {
		members = make(map[*Client]string)
		h.rooms[code] = members
	}
	members[c] = username
	count := len(members)

	payload := api.RoomJoinedPayload{
		RoomCode:    code,
		Username:    username,
		PDFs:        make([]api.Document, 0, len(docs)),
		Annotations: make(map[string][]api.Annotation, len(anns)),
		UserCount:   count,
	}
	for _, d := range docs {
		payload.PDFs = append(payload.PDFs, api.DocumentFromModel(d))
	}
	for docID, list := range anns {
		for _, a := range list {
			payload.Annotations[docID] = append(payload.Annotations[docID], api.AnnotationFromModel(a))
		}
	}
	c.pushEvent(api.EventRoomJoined, payload)
	h.mu.Unlock()

	h.logger.Info("User joined room", "room_code", code, "username", username, "user_count", count)
	h.publish(ctx, code, api.EventUserJoined, api.PresencePayload{Username: username, UserCount: count}, c.id)
}

func (h *Hub) sendMessage(ctx context.Context, c *Client, req api.SendMessageRequest) {
	code := validation.NormalizeRoomCode(req.RoomCode)
	if !h.roomExists(ctx, c, code) {
		return
	}

	h.publish(ctx, code, api.EventMessageReceived, api.MessagePayload{
		ID:        h.newID(),
		ClientID:  req.ClientID,
		Username:  usernameOrDefault(req.Username),
		Message:   req.Message,
		Timestamp: h.now(),
	}, "")
}

func (h *Hub) addAnnotation(ctx context.Context, c *Client, req api.AddAnnotationRequest) {
	code := validation.NormalizeRoomCode(req.RoomCode)
	if !h.roomExists(ctx, c, code) {
		return
	}
	if req.PDFID == "" || req.Annotation.Page < 1 {
		c.pushError(msgInvalidData)
		return
	}

	draft := req.Annotation
	a := &models.Annotation{
		ID:         h.newID(),
		DocumentID: req.PDFID,
		Type:       draft.Type,
		Page:       draft.Page,
		Coordinates: models.Rect{
			X:      draft.Coordinates.X,
			Y:      draft.Coordinates.Y,
			Width:  draft.Coordinates.Width,
			Height: draft.Coordinates.Height,
		},
		Text:      draft.Text,
		Color:     draft.Color,
		CreatedBy: usernameOrDefault(req.Username),
		CreatedAt: h.now(),
	}
	if a.Type == "" {
		a.Type = models.AnnotationTypeHighlight
	}
	if a.Color == "" {
		a.Color = models.DefaultHighlightColor
	}

	if err := h.store.AddAnnotation(ctx, code, a); err != nil {
		c.logger.Error("Failed to store annotation", "room_code", code, "error", err)
		c.pushError(msgInternalError)
		return
	}

	out := api.AnnotationFromModel(a)
	h.publish(ctx, code, api.EventAnnotationAdded, api.AnnotationPayload{PDFID: req.PDFID, Annotation: &out}, "")
}

// updateAnnotation меняет только text, color и coordinates.
// Неизвестная аннотация молча игнорируется.
func (h *Hub) updateAnnotation(ctx context.Context, c *Client, req api.UpdateAnnotationRequest) {
	code := validation.NormalizeRoomCode(req.RoomCode)
	if !h.roomExists(ctx, c, code) {
		return
	}

	updated, err := h.store.UpdateAnnotation(ctx, code, req.PDFID, req.AnnotationID,
		req.Updates.Model(), usernameOrDefault(req.Username), h.now())
	if err != nil {
		if errors.Is(err, storage.ErrAnnotationNotFound) {
			c.logger.Debug("Update of unknown annotation ignored", "annotation_id", req.AnnotationID)
			return
		}
		c.logger.Error("Failed to update annotation", "room_code", code, "error", err)
		c.pushError(msgInternalError)
		return
	}

	out := api.AnnotationFromModel(updated)
	h.publish(ctx, code, api.EventAnnotationUpdated, api.AnnotationPayload{
		PDFID:        req.PDFID,
		AnnotationID: req.AnnotationID,
		Annotation:   &out,
	}, "")
}

// deleteAnnotation рассылает удаление даже для неизвестной аннотации
func (h *Hub) deleteAnnotation(ctx context.Context, c *Client, req api.DeleteAnnotationRequest) {
	code := validation.NormalizeRoomCode(req.RoomCode)
	if !h.roomExists(ctx, c, code) {
		return
	}

	err := h.store.DeleteAnnotation(ctx, code, req.PDFID, req.AnnotationID)
	if err != nil && !errors.Is(err, storage.ErrAnnotationNotFound) {
		c.logger.Error("Failed to delete annotation", "room_code", code, "error", err)
		c.pushError(msgInternalError)
		return
	}

	h.publish(ctx, code, api.EventAnnotationDeleted, api.AnnotationPayload{
		PDFID:        req.PDFID,
		AnnotationID: req.AnnotationID,
	}, "")
}
