package room

import (
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/pkg/api"
)

// ErrUnknownEvent имя события не входит в протокол
var ErrUnknownEvent = errors.New("unknown event")

// Event входящее событие комнаты. Набор вариантов закрыт.
type Event interface {
	roomEvent()
}

// Joined снимок комнаты после успешного входа
type Joined struct {
	Annotations map[string][]*models.Annotation
	RoomCode    string
	Username    string
	Documents   []*models.Document
	UserCount   int
}

// UserJoined в комнату вошел участник
type UserJoined struct {
	Username  string
	UserCount int
}

// UserLeft участник покинул комнату
type UserLeft struct {
	Username  string
	UserCount int
}

// DocumentShared в комнату загружен новый документ
type DocumentShared struct {
	Document *models.Document
}

// MessageReceived сообщение чата, разосланное сервером
type MessageReceived struct {
	Timestamp time.Time
	ID        string
	ClientID  string
	Text      string
	Sender    string
}

// AnnotationAdded добавлена аннотация
type AnnotationAdded struct {
	Annotation *models.Annotation
	DocumentID string
}

// AnnotationUpdated аннотация изменена
type AnnotationUpdated struct {
	Annotation   *models.Annotation
	DocumentID   string
	AnnotationID string
}

// AnnotationDeleted аннотация удалена
type AnnotationDeleted struct {
	DocumentID   string
	AnnotationID string
}

// ServerError сервер отклонил запрос
type ServerError struct {
	Message string
}

func (Joined) roomEvent()            {}
func (UserJoined) roomEvent()        {}
func (UserLeft) roomEvent()          {}
func (DocumentShared) roomEvent()    {}
func (MessageReceived) roomEvent()   {}
func (AnnotationAdded) roomEvent()   {}
func (AnnotationUpdated) roomEvent() {}
func (AnnotationDeleted) roomEvent() {}
func (ServerError) roomEvent()       {}

// Decode преобразует конверт в событие
func Decode(env api.Envelope) (Event, error) {
	switch env.Event {
	case api.EventRoomJoined:
		var p api.RoomJoinedPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		ev := Joined{
			RoomCode:    p.RoomCode,
			Username:    p.Username,
			UserCount:   p.UserCount,
			Documents:   make([]*models.Document, 0, len(p.PDFs)),
			Annotations: make(map[string][]*models.Annotation, len(p.Annotations)),
		}
		for _, d := range p.PDFs {
			ev.Documents = append(ev.Documents, d.Model())
		}
		for docID, anns := range p.Annotations {
			for _, a := range anns {
				ev.Annotations[docID] = append(ev.Annotations[docID], a.Model(docID))
			}
		}
		return ev, nil

	case api.EventUserJoined, api.EventUserLeft:
		var p api.PresencePayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		if env.Event == api.EventUserJoined {
			return UserJoined{Username: p.Username, UserCount: p.UserCount}, nil
		}
		return UserLeft{Username: p.Username, UserCount: p.UserCount}, nil

	case api.EventPDFUploaded:
		var p api.Document
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return DocumentShared{Document: p.Model()}, nil

	case api.EventMessageReceived:
		var p api.MessagePayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return MessageReceived{
			ID:        p.ID,
			ClientID:  p.ClientID,
			Text:      p.Message,
			Sender:    p.Username,
			Timestamp: p.Timestamp,
		}, nil

	case api.EventAnnotationAdded, api.EventAnnotationUpdated:
		var p api.AnnotationPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		if p.Annotation == nil {
			return nil, fmt.Errorf("%s without annotation", env.Event)
		}
		ann := p.Annotation.Model(p.PDFID)
		if env.Event == api.EventAnnotationAdded {
			return AnnotationAdded{DocumentID: p.PDFID, Annotation: ann}, nil
		}
		id := p.AnnotationID
		if id == "" {
			id = ann.ID
		}
		return AnnotationUpdated{DocumentID: p.PDFID, AnnotationID: id, Annotation: ann}, nil

	case api.EventAnnotationDeleted:
		var p api.AnnotationPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return AnnotationDeleted{DocumentID: p.PDFID, AnnotationID: p.AnnotationID}, nil

	case api.EventError:
		var p api.ErrorPayload
		if err := env.Decode(&p); err != nil {
			return nil, err
		}
		return ServerError{Message: p.Message}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}
