package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iudanet/studyroom/internal/client/iocli"
	"github.com/iudanet/studyroom/internal/client/room"
	"github.com/iudanet/studyroom/internal/models"
)

func newTestTerminal() (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	console := iocli.NewStream(strings.NewReader(""), out)
	return NewTerminal(context.Background(), setupTestLogger(), console, nil, "alice", ""), out
}

func TestTerminal_ShowMessage(t *testing.T) {
	term, out := newTestTerminal()
	ts := time.Date(2026, 1, 1, 9, 30, 0, 0, time.Local)

	term.ShowMessage(models.ChatMessage{Kind: models.ChatSystem, Text: "bob joined the room"})
	term.ShowMessage(models.ChatMessage{Kind: models.ChatOwn, Text: "hello", Sender: "alice", Timestamp: ts})
	term.ShowMessage(models.ChatMessage{Kind: models.ChatOther, Text: "hi", Sender: "bob", Timestamp: ts})

	// Вывод не в терминал - без цветов
	assert.Equal(t, "ℹ bob joined the room\n[09:30] You: hello\n[09:30] bob: hi\n", out.String())
}

func TestTerminal_Document(t *testing.T) {
	term, out := newTestTerminal()

	term.ClearDocument()
	assert.Empty(t, out.String())

	term.RenderDocument(&models.Document{ID: "d1", OriginalName: "a.pdf", UploadedBy: "bob", URL: "/uploads/a.pdf"})
	term.RenderAnnotation(&models.Annotation{ID: "h1", Page: 2, Coordinates: models.Rect{X: 10, Y: 20}, CreatedBy: "bob", Text: "key"})
	term.RemoveAnnotation("h1")
	term.ClearDocument()

	output := out.String()
	assert.Contains(t, output, "a.pdf (shared by bob)")
	assert.Contains(t, output, "/uploads/a.pdf")
	assert.Contains(t, output, `highlight h1 on page 2 at (10, 20) by bob: "key"`)
	assert.Contains(t, output, "highlight h1 removed")
	assert.Contains(t, output, "No PDF loaded")
}

func TestTerminal_PersistentNotification(t *testing.T) {
	term, out := newTestTerminal()

	term.Notify(room.Notification{Key: "reconnecting", Level: room.LevelWarning, Message: "Connection lost. Trying to reconnect...", Persistent: true})
	assert.Contains(t, out.String(), "[warning] Connection lost. Trying to reconnect...")
	assert.Equal(t, []string{"Connection lost. Trying to reconnect..."}, term.Pending())

	term.Dismiss("reconnecting")
	assert.Empty(t, term.Pending())
}

func TestColorIndex(t *testing.T) {
	// Один и тот же участник всегда получает один цвет
	assert.Equal(t, colorIndex("alice"), colorIndex("alice"))
	for _, name := range []string{"", "a", "bob", strings.Repeat("z", 200)} {
		idx := colorIndex(name)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, len(userColors))
	}
}
