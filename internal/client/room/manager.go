package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/studyroom/internal/client/docstate"
	"github.com/iudanet/studyroom/internal/client/transcript"
	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/pkg/api"
)

const (
	inboxSize = 256

	// reconnectingKey ключ постоянного уведомления об обрыве связи
	reconnectingKey = "reconnecting"

	// Размер выделения вокруг точки клика
	highlightWidth  = 160
	highlightHeight = 40
)

var (
	// ErrNoActiveDocument в комнате нет открытого документа
	ErrNoActiveDocument = errors.New("no active document")
	// ErrAnnotationNotFound аннотации нет в активном документе
	ErrAnnotationNotFound = errors.New("annotation not found")
	// ErrInvalidPage номер страницы меньше 1
	ErrInvalidPage = errors.New("page must be >= 1")
	// ErrStopped цикл Run уже завершен
	ErrStopped = errors.New("room manager stopped")
)

// Options настройки Manager
type Options struct {
	Now        func() time.Time
	NewID      func() string
	Transcript transcript.Options
	// QuietRejoin не добавляет приветствие при повторном входе после переподключения
	QuietRejoin bool
}

// Manager владеет состоянием клиента в комнате.
// Все изменения состояния выполняются в горутине Run в порядке поступления.
type Manager struct {
	emitter  Emitter
	renderer Renderer
	chat     ChatView
	notifier Notifier
	logger   *slog.Logger
	state    *ClientSessionState
	inbox    chan func(*ClientSessionState)
	// done закрывается при выходе из Run; после этого действия отбрасываются
	done     chan struct{}
	stopOnce sync.Once
	opts     Options
}

// NewManager создает Manager для комнаты roomCode
func NewManager(
	logger *slog.Logger,
	roomCode, displayName string,
	emitter Emitter,
	renderer Renderer,
	chat ChatView,
	notifier Notifier,
	opts Options,
) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Manager{
		emitter:  emitter,
		renderer: renderer,
		chat:     chat,
		notifier: notifier,
		logger:   logger.With("room_code", roomCode),
		state:    NewClientSessionState(roomCode, displayName, opts.Transcript),
		inbox:    make(chan func(*ClientSessionState), inboxSize),
		done:     make(chan struct{}),
		opts:     opts,
	}
}

// Run обрабатывает события и действия до отмены ctx
func (m *Manager) Run(ctx context.Context) error {
	defer m.stopOnce.Do(func() { close(m.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-m.inbox:
			fn(m.state)
		}
	}
}

// submit ставит функцию в очередь горутины Run.
// Колбэки транспорта не блокируются после остановки Run.
func (m *Manager) submit(fn func(*ClientSessionState)) {
	select {
	case m.inbox <- fn:
	case <-m.done:
	}
}

// do выполняет fn в горутине Run и ждет результата
func (m *Manager) do(ctx context.Context, fn func(*ClientSessionState) error) error {
	result := make(chan error, 1)
	select {
	case m.inbox <- func(s *ClientSessionState) { result <- fn(s) }:
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnConnect вызывается транспортом после установки соединения
func (m *Manager) OnConnect() {
	m.submit(func(s *ClientSessionState) {
		s.Connection = StateConnecting
		err := m.emitter.Emit(api.EventJoinStudyRoom, api.JoinStudyRoomRequest{
			RoomCode: s.RoomCode,
			Username: s.DisplayName,
		})
		if err != nil {
			m.logger.Warn("Failed to send join request", "error", err)
		}
	})
}

// OnDisconnect вызывается транспортом после обрыва соединения
func (m *Manager) OnDisconnect(err error) {
	m.submit(func(s *ClientSessionState) {
		s.Connection = StateDisconnected
		m.logger.Debug("Disconnected", "error", err)
		m.notifier.Notify(Notification{
			Key:        reconnectingKey,
			Level:      LevelWarning,
			Message:    "Connection lost. Trying to reconnect...",
			Persistent: true,
		})
	})
}

// OnEnvelope вызывается транспортом для каждого входящего кадра
func (m *Manager) OnEnvelope(env api.Envelope) {
	ev, err := Decode(env)
	if err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			m.logger.Debug("Dropping unknown event", "event", env.Event)
		} else {
			m.logger.Warn("Dropping malformed event", "event", env.Event, "error", err)
		}
		return
	}
	m.Dispatch(ev)
}

// Dispatch ставит событие в очередь на применение
func (m *Manager) Dispatch(ev Event) {
	m.submit(func(s *ClientSessionState) {
		m.apply(s, ev)
	})
}

// apply единственная точка применения входящих событий
func (m *Manager) apply(s *ClientSessionState, ev Event) {
	switch e := ev.(type) {
	case Joined:
		m.applyJoined(s, e)

	case UserJoined:
		s.UserCount = e.UserCount
		m.chat.ShowUserCount(e.UserCount)
		m.appendSystem(s, fmt.Sprintf("%s joined the room", e.Username))

	case UserLeft:
		s.UserCount = e.UserCount
		m.chat.ShowUserCount(e.UserCount)
		m.appendSystem(s, fmt.Sprintf("%s left the room", e.Username))

	case DocumentShared:
		s.Document.ApplyDocumentShared(e.Document)
		m.renderer.ClearDocument()
		m.renderer.RenderDocument(e.Document)
		m.appendSystem(s, fmt.Sprintf("%s shared %q - Now everyone can study together!",
			e.Document.UploadedBy, e.Document.OriginalName))
		m.notifier.Notify(Notification{
			Level:   LevelSuccess,
			Message: fmt.Sprintf("Now studying: %s", e.Document.OriginalName),
		})

	case MessageReceived:
		at := e.Timestamp
		if at.IsZero() {
			at = m.opts.Now()
		}
		if s.Transcript.AppendReceived(e.ClientID, e.Text, e.Sender, at) {
			m.showLast(s)
		}

	case AnnotationAdded:
		applied := s.Document.ApplyAnnotationEvent(docstate.AnnotationEvent{
			Op:         docstate.OpAdd,
			DocumentID: e.DocumentID,
			Annotation: e.Annotation,
		})
		if !applied {
			m.logger.Debug("Ignoring annotation for inactive document", "pdf_id", e.DocumentID)
			return
		}
		m.renderer.RenderAnnotation(e.Annotation)
		if e.Annotation.CreatedBy != s.DisplayName {
			m.notifier.Notify(Notification{
				Level:   LevelInfo,
				Message: fmt.Sprintf("%s added a highlight", e.Annotation.CreatedBy),
			})
		}

	case AnnotationUpdated:
		applied := s.Document.ApplyAnnotationEvent(docstate.AnnotationEvent{
			Op:           docstate.OpUpdate,
			DocumentID:   e.DocumentID,
			AnnotationID: e.AnnotationID,
			Annotation:   e.Annotation,
		})
		if applied {
			m.renderer.RenderAnnotation(e.Annotation)
		}

	case AnnotationDeleted:
		applied := s.Document.ApplyAnnotationEvent(docstate.AnnotationEvent{
			Op:           docstate.OpDelete,
			DocumentID:   e.DocumentID,
			AnnotationID: e.AnnotationID,
		})
		if applied {
			m.renderer.RemoveAnnotation(e.AnnotationID)
		}

	case ServerError:
		m.notifier.Notify(Notification{Level: LevelError, Message: e.Message})

	default:
		m.logger.Warn("Unhandled room event", "type", fmt.Sprintf("%T", ev))
	}
}

func (m *Manager) applyJoined(s *ClientSessionState, e Joined) {
	s.Connection = StateJoined
	s.Joins++
	s.UserCount = e.UserCount
	if e.RoomCode != "" {
		s.RoomCode = e.RoomCode
	}

	m.notifier.Dismiss(reconnectingKey)
	m.chat.ShowUserCount(e.UserCount)

	s.Document.ApplySnapshot(e.Documents, e.Annotations)
	m.renderer.ClearDocument()
	if doc := s.Document.Active(); doc != nil {
		m.renderer.RenderDocument(doc)
		for _, a := range s.Document.Annotations() {
			m.renderer.RenderAnnotation(a)
		}
	}

	if m.opts.QuietRejoin && s.Joins > 1 {
		m.logger.Debug("Rejoined room", "joins", s.Joins)
		return
	}

	m.appendSystem(s, fmt.Sprintf(
		"Welcome to room %s! You can now upload PDFs and start studying together.", s.RoomCode))
	m.notifier.Notify(Notification{
		Level:   LevelSuccess,
		Message: fmt.Sprintf("Welcome to room %s!", s.RoomCode),
	})
}

func (m *Manager) appendSystem(s *ClientSessionState, text string) {
	s.Transcript.AppendSystem(text, m.opts.Now())
	m.showLast(s)
}

func (m *Manager) showLast(s *ClientSessionState) {
	if last, ok := s.Transcript.Last(); ok {
		m.chat.ShowMessage(last)
	}
}

// SendMessage отправляет сообщение и сразу добавляет его в журнал как собственное.
// Пустое сообщение игнорируется.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	return m.do(ctx, func(s *ClientSessionState) error {
		clientID := m.opts.NewID()
		err := m.emitter.Emit(api.EventSendMessage, api.SendMessageRequest{
			RoomCode: s.RoomCode,
			Message:  text,
			Username: s.DisplayName,
			ClientID: clientID,
		})
		if err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}

		s.Transcript.AppendOwn(clientID, text, s.DisplayName, m.opts.Now())
		m.showLast(s)
		return nil
	})
}

// AddHighlight выделяет область вокруг точки (x, y) на странице page активного документа.
// Аннотация появится после события annotation_added.
func (m *Manager) AddHighlight(ctx context.Context, page int, x, y float64) error {
	if page < 1 {
		return ErrInvalidPage
	}

	return m.do(ctx, func(s *ClientSessionState) error {
		doc := s.Document.Active()
		if doc == nil {
			return ErrNoActiveDocument
		}

		err := m.emitter.Emit(api.EventAddAnnotation, api.AddAnnotationRequest{
			RoomCode: s.RoomCode,
			PDFID:    doc.ID,
			Username: s.DisplayName,
			Annotation: api.AnnotationDraft{
				Type: models.AnnotationTypeHighlight,
				Page: page,
				Coordinates: api.Coordinates{
					X:      x - highlightWidth/2,
					Y:      y - highlightHeight/2,
					Width:  highlightWidth,
					Height: highlightHeight,
				},
				Color: models.DefaultHighlightColor,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to add highlight: %w", err)
		}

		m.notifier.Notify(Notification{
			Level:   LevelSuccess,
			Message: fmt.Sprintf("Highlight added by %s! Everyone can see it.", s.DisplayName),
		})
		return nil
	})
}

// UpdateAnnotation отправляет изменения аннотации активного документа
func (m *Manager) UpdateAnnotation(ctx context.Context, id string, updates models.AnnotationUpdates) error {
	if updates.IsEmpty() {
		return nil
	}

	return m.do(ctx, func(s *ClientSessionState) error {
		doc := s.Document.Active()
		if doc == nil {
			return ErrNoActiveDocument
		}
		if _, ok := s.Document.Annotation(id); !ok {
			return fmt.Errorf("%w: %s", ErrAnnotationNotFound, id)
		}

		req := api.UpdateAnnotationRequest{
			RoomCode:     s.RoomCode,
			PDFID:        doc.ID,
			AnnotationID: id,
			Username:     s.DisplayName,
			Updates: api.AnnotationUpdates{
				Text:  updates.Text,
				Color: updates.Color,
			},
		}
		if updates.Coordinates != nil {
			c := api.Coordinates(*updates.Coordinates)
			req.Updates.Coordinates = &c
		}

		if err := m.emitter.Emit(api.EventUpdateAnnotation, req); err != nil {
			return fmt.Errorf("failed to update annotation: %w", err)
		}
		return nil
	})
}

// DeleteAnnotation удаляет аннотацию активного документа
func (m *Manager) DeleteAnnotation(ctx context.Context, id string) error {
	return m.do(ctx, func(s *ClientSessionState) error {
		doc := s.Document.Active()
		if doc == nil {
			return ErrNoActiveDocument
		}
		if _, ok := s.Document.Annotation(id); !ok {
			return fmt.Errorf("%w: %s", ErrAnnotationNotFound, id)
		}

		err := m.emitter.Emit(api.EventDeleteAnnotation, api.DeleteAnnotationRequest{
			RoomCode:     s.RoomCode,
			PDFID:        doc.ID,
			AnnotationID: id,
		})
		if err != nil {
			return fmt.Errorf("failed to delete annotation: %w", err)
		}
		return nil
	})
}

// RemoveDocument закрывает документ у себя и сообщает об этом в чат комнаты.
// У остальных участников документ остается открытым.
func (m *Manager) RemoveDocument(ctx context.Context) error {
	return m.do(ctx, func(s *ClientSessionState) error {
		doc := s.Document.Active()
		if doc == nil {
			return ErrNoActiveDocument
		}

		s.Document.Clear()
		m.renderer.ClearDocument()

		err := m.emitter.Emit(api.EventSendMessage, api.SendMessageRequest{
			RoomCode: s.RoomCode,
			Message:  fmt.Sprintf("%s removed the PDF from the study session", s.DisplayName),
			Username: s.DisplayName,
			ClientID: m.opts.NewID(),
		})
		if err != nil {
			m.logger.Warn("Failed to announce document removal", "error", err)
		}

		m.notifier.Notify(Notification{Level: LevelInfo, Message: "PDF removed from study session"})
		return nil
	})
}

// State возвращает копию текущего состояния.
// Все ранее поставленные в очередь события к этому моменту уже применены.
func (m *Manager) State(ctx context.Context) (View, error) {
	var v View
	err := m.do(ctx, func(s *ClientSessionState) error {
		v = s.view()
		return nil
	})
	return v, err
}
