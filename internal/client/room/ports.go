package room

import "github.com/iudanet/studyroom/internal/models"

//go:generate moq -out room_mock.go . Emitter Renderer ChatView Notifier

// Emitter отправляет события на сервер
type Emitter interface {
	Emit(event string, payload any) error
}

// Renderer отображает активный документ и его аннотации
type Renderer interface {
	RenderDocument(doc *models.Document)
	RenderAnnotation(a *models.Annotation)
	RemoveAnnotation(id string)
	ClearDocument()
}

// ChatView отображает журнал чата и число участников
type ChatView interface {
	ShowMessage(m models.ChatMessage)
	ShowUserCount(n int)
}

// Level уровень уведомления
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notification уведомление пользователю.
// Постоянное уведомление остается до Dismiss с тем же Key.
type Notification struct {
	Key        string
	Message    string
	Level      Level
	Persistent bool
}

// Notifier показывает уведомления
type Notifier interface {
	Notify(n Notification)
	Dismiss(key string)
}

// EmitterFunc адаптер функции к Emitter
type EmitterFunc func(event string, payload any) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(event string, payload any) error {
	return f(event, payload)
}
