package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/studyroom/internal/client/iocli"
	"github.com/iudanet/studyroom/internal/client/room"
	"github.com/iudanet/studyroom/internal/client/transport"
	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/pkg/api"
)

// newRoomHarness создает Cli и запущенный Manager с записью исходящих событий
func newRoomHarness(t *testing.T) (*Cli, *room.Manager, *room.EmitterMock, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	console := iocli.NewStream(strings.NewReader(""), out)
	logger := setupTestLogger()

	emitter := &room.EmitterMock{EmitFunc: func(event string, payload any) error { return nil }}
	term := NewTerminal(context.Background(), logger, console, nil, "alice", "")
	manager := room.NewManager(logger, "AB12CD34", "alice", emitter, term, term, term, room.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = manager.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	c := &Cli{io: console, logger: logger}
	return c, manager, emitter, out
}

func TestHandleLine_ChatMessage(t *testing.T) {
	c, manager, emitter, out := newRoomHarness(t)
	ctx := context.Background()

	quit := c.handleLine(ctx, manager, "AB12CD34", "alice", "hello")
	assert.False(t, quit)

	calls := emitter.EmitCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, api.EventSendMessage, calls[0].Event)
	assert.Contains(t, out.String(), "You: hello")
}

func TestHandleLine_Commands(t *testing.T) {
	c, manager, emitter, out := newRoomHarness(t)
	ctx := context.Background()

	c.handleLine(ctx, manager, "AB12CD34", "alice", "/share")
	assert.Contains(t, out.String(), "Room code: AB12CD34")

	c.handleLine(ctx, manager, "AB12CD34", "alice", "/highlight 1 100 100")
	assert.Contains(t, out.String(), "No PDF loaded")

	c.handleLine(ctx, manager, "AB12CD34", "alice", "/highlight one 2")
	assert.Contains(t, out.String(), "Usage: /highlight PAGE X Y")

	manager.Dispatch(room.DocumentShared{Document: &models.Document{ID: "D1", OriginalName: "a.pdf", UploadedBy: "bob"}})
	manager.Dispatch(room.AnnotationAdded{DocumentID: "D1", Annotation: &models.Annotation{ID: "h1", Page: 1, CreatedBy: "bob"}})

	c.handleLine(ctx, manager, "AB12CD34", "alice", "/highlight 2 100 100")
	c.handleLine(ctx, manager, "AB12CD34", "alice", "/note h1 key definition")
	c.handleLine(ctx, manager, "AB12CD34", "alice", "/unhighlight h1")

	var events []string
	for _, call := range emitter.EmitCalls() {
		events = append(events, call.Event)
	}
	assert.Equal(t, []string{api.EventAddAnnotation, api.EventUpdateAnnotation, api.EventDeleteAnnotation}, events)

	out.Reset()
	c.handleLine(ctx, manager, "AB12CD34", "alice", "/doc")
	assert.Contains(t, out.String(), "a.pdf")
	assert.Contains(t, out.String(), "h1")

	c.handleLine(ctx, manager, "AB12CD34", "alice", "/unhighlight missing")
	assert.Contains(t, out.String(), "No such highlight")

	c.handleLine(ctx, manager, "AB12CD34", "alice", "/bogus")
	assert.Contains(t, out.String(), "Unknown command /bogus")

	assert.True(t, c.handleLine(ctx, manager, "AB12CD34", "alice", "/quit"))
}

func TestHandleLine_NotConnected(t *testing.T) {
	c, manager, emitter, out := newRoomHarness(t)
	emitter.EmitFunc = func(event string, payload any) error { return transport.ErrNotConnected }

	c.handleLine(context.Background(), manager, "AB12CD34", "alice", "hello")
	assert.Contains(t, out.String(), "Not connected. Trying to reconnect...")
}

func TestInputLoop_QuitAndEOF(t *testing.T) {
	_, manager, emitter, _ := newRoomHarness(t)

	out := &bytes.Buffer{}
	c := &Cli{io: iocli.NewStream(strings.NewReader("hi\n/quit\nnever sent\n"), out), logger: setupTestLogger()}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.inputLoop(ctx, manager, "AB12CD34", "alice"))
	assert.Len(t, emitter.EmitCalls(), 1)

	// Конец ввода завершает цикл без ошибки
	c = &Cli{io: iocli.NewStream(strings.NewReader(""), out), logger: setupTestLogger()}
	require.NoError(t, c.inputLoop(ctx, manager, "AB12CD34", "alice"))
}

func TestParseHighlight(t *testing.T) {
	page, x, y, err := parseHighlight("3 120.5 80")
	require.NoError(t, err)
	assert.Equal(t, 3, page)
	assert.Equal(t, 120.5, x)
	assert.Equal(t, 80.0, y)

	_, _, _, err = parseHighlight("3 120")
	assert.Error(t, err)
}
