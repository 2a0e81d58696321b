package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// Имена событий real-time канала
const (
	// Client -> Server
	EventJoinStudyRoom    = "join_study_room"
	EventSendMessage      = "send_message"
	EventAddAnnotation    = "add_annotation"
	EventUpdateAnnotation = "update_annotation"
	EventDeleteAnnotation = "delete_annotation"

	// Server -> Client
	EventRoomJoined        = "room_joined"
	EventUserJoined        = "user_joined"
	EventUserLeft          = "user_left"
	EventPDFUploaded       = "pdf_uploaded"
	EventMessageReceived   = "message_received"
	EventAnnotationAdded   = "annotation_added"
	EventAnnotationUpdated = "annotation_updated"
	EventAnnotationDeleted = "annotation_deleted"
	EventError             = "error"
)

// Envelope обертка одного события в WebSocket кадре
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope сериализует payload и упаковывает его в Envelope
func NewEnvelope(event string, payload any) (Envelope, error) {
	env := Envelope{Event: event}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	env.Data = data
	return env, nil
}

// Decode распаковывает data в v
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no data", e.Event)
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Event, err)
	}
	return nil
}

// Coordinates прямоугольник выделения в пикселях отрисованной страницы
type Coordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document описание загруженного PDF (payload события pdf_uploaded)
type Document struct {
	UploadedAt   time.Time `json:"uploaded_at"`
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	UploadedBy   string    `json:"uploaded_by"`
	URL          string    `json:"url"`
}

// Annotation аннотация в том виде, в каком она передается по сети
type Annotation struct {
	CreatedAt   time.Time   `json:"created_at"`
	ModifiedAt  *time.Time  `json:"modified_at,omitempty"`
	ID          string      `json:"id"`
	Type        string      `json:"type"`
	Text        string      `json:"text"`
	Color       string      `json:"color"`
	CreatedBy   string      `json:"created_by"`
	ModifiedBy  string      `json:"modified_by,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Page        int         `json:"page"`
}

// AnnotationDraft новая аннотация в запросе add_annotation (id и автора назначает сервер)
type AnnotationDraft struct {
	Type        string      `json:"type"`
	Text        string      `json:"text,omitempty"`
	Color       string      `json:"color,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Page        int         `json:"page"`
}

// AnnotationUpdates изменяемые поля в запросе update_annotation
type AnnotationUpdates struct {
	Text        *string      `json:"text,omitempty"`
	Color       *string      `json:"color,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// JoinStudyRoomRequest рукопожатие, регистрирующее соединение в комнате
type JoinStudyRoomRequest struct {
	RoomCode string `json:"room_code"`
	Username string `json:"username"`
}

// RoomJoinedPayload полный снимок состояния комнаты
type RoomJoinedPayload struct {
	Annotations map[string][]Annotation `json:"annotations"` // document id -> аннотации
	RoomCode    string                  `json:"room_code"`
	Username    string                  `json:"username"`
	PDFs        []Document              `json:"pdfs"`
	UserCount   int                     `json:"user_count"`
}

// PresencePayload payload событий user_joined и user_left
type PresencePayload struct {
	Username  string `json:"username"`
	UserCount int    `json:"user_count"`
}

// SendMessageRequest запрос на рассылку сообщения чата
type SendMessageRequest struct {
	RoomCode string `json:"room_code"`
	Message  string `json:"message"`
	Username string `json:"username"`
	ClientID string `json:"client_id,omitempty"` // id, сгенерированный отправителем
}

// MessagePayload сообщение чата, разосланное сервером
type MessagePayload struct {
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id,omitempty"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
}

// AddAnnotationRequest запрос на сохранение и рассылку новой аннотации
type AddAnnotationRequest struct {
	RoomCode   string          `json:"room_code"`
	PDFID      string          `json:"pdf_id"`
	Username   string          `json:"username"`
	Annotation AnnotationDraft `json:"annotation"`
}

// UpdateAnnotationRequest запрос на изменение аннотации
type UpdateAnnotationRequest struct {
	RoomCode     string            `json:"room_code"`
	PDFID        string            `json:"pdf_id"`
	AnnotationID string            `json:"annotation_id"`
	Username     string            `json:"username"`
	Updates      AnnotationUpdates `json:"updates"`
}

// DeleteAnnotationRequest запрос на удаление аннотации
type DeleteAnnotationRequest struct {
	RoomCode     string `json:"room_code"`
	PDFID        string `json:"pdf_id"`
	AnnotationID string `json:"annotation_id"`
}

// AnnotationPayload payload событий annotation_added/updated/deleted
type AnnotationPayload struct {
	Annotation   *Annotation `json:"annotation,omitempty"`
	PDFID        string      `json:"pdf_id"`
	AnnotationID string      `json:"annotation_id,omitempty"`
}

// ErrorPayload payload события error
type ErrorPayload struct {
	Message string `json:"message"`
}
