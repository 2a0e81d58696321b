package room

import (
	"github.com/iudanet/studyroom/internal/client/docstate"
	"github.com/iudanet/studyroom/internal/client/transcript"
	"github.com/iudanet/studyroom/internal/models"
)

// ConnectionState состояние подключения к комнате
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateJoined
)

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// ClientSessionState состояние клиента в комнате.
// Принадлежит Manager и изменяется только из его горутины.
type ClientSessionState struct {
	Document    *docstate.State
	Transcript  *transcript.Transcript
	RoomCode    string
	DisplayName string
	Connection  ConnectionState
	UserCount   int
	Joins       int // число успешных входов, включая повторные
}

// NewClientSessionState создает состояние до подключения
func NewClientSessionState(roomCode, displayName string, opts transcript.Options) *ClientSessionState {
	return &ClientSessionState{
		RoomCode:    roomCode,
		DisplayName: displayName,
		Connection:  StateDisconnected,
		Document:    docstate.New(),
		Transcript:  transcript.New(opts),
	}
}

// View копия состояния для чтения вне горутины Manager
type View struct {
	Document    *models.Document
	RoomCode    string
	DisplayName string
	Annotations []*models.Annotation
	Transcript  []models.ChatMessage
	Connection  ConnectionState
	UserCount   int
	Joins       int
}

func (s *ClientSessionState) view() View {
	v := View{
		RoomCode:    s.RoomCode,
		DisplayName: s.DisplayName,
		Connection:  s.Connection,
		UserCount:   s.UserCount,
		Joins:       s.Joins,
		Transcript:  s.Transcript.Entries(),
	}
	if doc := s.Document.Active(); doc != nil {
		d := *doc
		v.Document = &d
	}
	for _, a := range s.Document.Annotations() {
		v.Annotations = append(v.Annotations, a.Clone())
	}
	return v
}
