package hub

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/bus"
	"github.com/iudanet/studyroom/internal/server/storage/sqlite"
	"github.com/iudanet/studyroom/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type testEnv struct {
	hub   *Hub
	store *sqlite.Storage
	url   string
}

func setupHub(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h, err := New(ctx, setupTestLogger(), store, bus.NewLocal())
	require.NoError(t, err)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.ServeConn(r.Context(), conn)
	}))
	t.Cleanup(func() {
		_ = h.Close()
		server.Close()
	})

	return &testEnv{
		hub:   h,
		store: store,
		url:   "ws" + strings.TrimPrefix(server.URL, "http"),
	}
}

func (e *testEnv) createRoom(t *testing.T, code string) {
	t.Helper()
	err := e.store.CreateRoom(context.Background(), &models.Room{Code: code, Creator: "alice", CreatedAt: time.Now()})
	require.NoError(t, err)
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func emit(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	env, err := api.NewEnvelope(event, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

// expect читает следующее событие и проверяет его имя
func expect(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var env api.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, event, env.Event, "data: %s", string(env.Data))
	if payload != nil {
		require.NoError(t, env.Decode(payload))
	}
}

func join(t *testing.T, conn *websocket.Conn, code, username string) api.RoomJoinedPayload {
	t.Helper()
	emit(t, conn, api.EventJoinStudyRoom, api.JoinStudyRoomRequest{RoomCode: code, Username: username})
	var joined api.RoomJoinedPayload
	expect(t, conn, api.EventRoomJoined, &joined)
	return joined
}

func TestHub_JoinUnknownRoom(t *testing.T) {
	env := setupHub(t)
	conn := env.dial(t)

	emit(t, conn, api.EventJoinStudyRoom, api.JoinStudyRoomRequest{RoomCode: "NOPE0000", Username: "alice"})

	var errPayload api.ErrorPayload
	expect(t, conn, api.EventError, &errPayload)
	assert.Equal(t, "Room not found", errPayload.Message)
}

func TestHub_PresenceAndChat(t *testing.T) {
	env := setupHub(t)
	env.createRoom(t, "AB12CD34")

	alice := env.dial(t)
	joined := join(t, alice, "ab12cd34", "alice")
	assert.Equal(t, "AB12CD34", joined.RoomCode)
	assert.Equal(t, "alice", joined.Username)
	assert.Equal(t, 1, joined.UserCount)
	assert.Empty(t, joined.PDFs)

	bob := env.dial(t)
	joined = join(t, bob, "AB12CD34", "bob")
	assert.Equal(t, 2, joined.UserCount)

	var presence api.PresencePayload
	expect(t, alice, api.EventUserJoined, &presence)
	assert.Equal(t, api.PresencePayload{Username: "bob", UserCount: 2}, presence)

	// Сообщение получают все, включая отправителя
	emit(t, alice, api.EventSendMessage, api.SendMessageRequest{
		RoomCode: "AB12CD34", Message: "hello", Username: "alice", ClientID: "c-1",
	})
	for _, conn := range []*websocket.Conn{alice, bob} {
		var msg api.MessagePayload
		expect(t, conn, api.EventMessageReceived, &msg)
		assert.Equal(t, "hello", msg.Message)
		assert.Equal(t, "alice", msg.Username)
		assert.Equal(t, "c-1", msg.ClientID)
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.Timestamp.IsZero())
	}

	require.NoError(t, bob.Close())
	expect(t, alice, api.EventUserLeft, &presence)
	assert.Equal(t, api.PresencePayload{Username: "bob", UserCount: 1}, presence)

	assert.Eventually(t, func() bool { return env.hub.UserCount("AB12CD34") == 1 }, time.Second, 10*time.Millisecond)
}

func TestHub_AnnotationLifecycle(t *testing.T) {
	env := setupHub(t)
	env.createRoom(t, "AB12CD34")

	alice := env.dial(t)
	join(t, alice, "AB12CD34", "alice")
	bob := env.dial(t)
	join(t, bob, "AB12CD34", "bob")
	expect(t, alice, api.EventUserJoined, nil)

	emit(t, alice, api.EventAddAnnotation, api.AddAnnotationRequest{
		RoomCode: "AB12CD34",
		PDFID:    "doc-1",
		Username: "alice",
		Annotation: api.AnnotationDraft{
			Type:        "highlight",
			Page:        2,
			Coordinates: api.Coordinates{X: 20, Y: 80, Width: 160, Height: 40},
		},
	})

	var added api.AnnotationPayload
	for _, conn := range []*websocket.Conn{alice, bob} {
		expect(t, conn, api.EventAnnotationAdded, &added)
		require.NotNil(t, added.Annotation)
		assert.Equal(t, "doc-1", added.PDFID)
		assert.Equal(t, "alice", added.Annotation.CreatedBy)
		assert.Equal(t, "#ffff00", added.Annotation.Color)
		assert.Equal(t, 2, added.Annotation.Page)
	}
	annID := added.Annotation.ID

	text := "important"
	emit(t, bob, api.EventUpdateAnnotation, api.UpdateAnnotationRequest{
		RoomCode: "AB12CD34", PDFID: "doc-1", AnnotationID: annID, Username: "bob",
		Updates: api.AnnotationUpdates{Text: &text},
	})
	var updated api.AnnotationPayload
	expect(t, alice, api.EventAnnotationUpdated, &updated)
	require.NotNil(t, updated.Annotation)
	assert.Equal(t, annID, updated.AnnotationID)
	assert.Equal(t, "important", updated.Annotation.Text)
	assert.Equal(t, "bob", updated.Annotation.ModifiedBy)
	assert.Equal(t, "alice", updated.Annotation.CreatedBy)
	expect(t, bob, api.EventAnnotationUpdated, nil)

	// Новый участник получает аннотацию в снимке
	carol := env.dial(t)
	joined := join(t, carol, "AB12CD34", "carol")
	require.Len(t, joined.Annotations["doc-1"], 1)
	assert.Equal(t, "important", joined.Annotations["doc-1"][0].Text)
	expect(t, alice, api.EventUserJoined, nil)
	expect(t, bob, api.EventUserJoined, nil)

	// Изменение неизвестной аннотации молча игнорируется
	emit(t, bob, api.EventUpdateAnnotation, api.UpdateAnnotationRequest{
		RoomCode: "AB12CD34", PDFID: "doc-1", AnnotationID: "missing", Username: "bob",
		Updates: api.AnnotationUpdates{Text: &text},
	})

	emit(t, bob, api.EventDeleteAnnotation, api.DeleteAnnotationRequest{
		RoomCode: "AB12CD34", PDFID: "doc-1", AnnotationID: annID,
	})
	var deleted api.AnnotationPayload
	expect(t, alice, api.EventAnnotationDeleted, &deleted)
	assert.Equal(t, annID, deleted.AnnotationID)
	assert.Nil(t, deleted.Annotation)
	expect(t, bob, api.EventAnnotationDeleted, nil)
	expect(t, carol, api.EventAnnotationDeleted, nil)
}

func TestHub_SnapshotIncludesDocuments(t *testing.T) {
	env := setupHub(t)
	env.createRoom(t, "AB12CD34")
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf"} {
		require.NoError(t, env.store.AddDocument(ctx, &models.Document{
			ID: name, RoomCode: "AB12CD34", Filename: name, OriginalName: name,
			UploadedBy: "alice", URL: "/uploads/" + name, UploadedAt: time.Now(),
		}))
	}

	conn := env.dial(t)
	joined := join(t, conn, "AB12CD34", "")
	assert.Equal(t, "Anonymous", joined.Username)
	require.Len(t, joined.PDFs, 2)
	assert.Equal(t, "a.pdf", joined.PDFs[0].ID)
	assert.Equal(t, "b.pdf", joined.PDFs[1].ID)

	env.hub.BroadcastDocument(ctx, &models.Document{ID: "c.pdf", RoomCode: "AB12CD34", OriginalName: "c.pdf", UploadedBy: "bob"})
	var doc api.Document
	expect(t, conn, api.EventPDFUploaded, &doc)
	assert.Equal(t, "c.pdf", doc.ID)
	assert.Equal(t, "bob", doc.UploadedBy)
}

func TestHub_InvalidFrames(t *testing.T) {
	env := setupHub(t)
	conn := env.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var errPayload api.ErrorPayload
	expect(t, conn, api.EventError, &errPayload)
	assert.Equal(t, "Invalid message format", errPayload.Message)

	emit(t, conn, "screen_share", map[string]string{})
	expect(t, conn, api.EventError, &errPayload)
	assert.Contains(t, errPayload.Message, "Unknown event")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"send_message","data":"oops"}`)))
	expect(t, conn, api.EventError, &errPayload)
	assert.Equal(t, "Invalid event data", errPayload.Message)
}

func TestClient_PushClosesSlowClient(t *testing.T) {
	c := newClient("c-1", nil, setupTestLogger())

	joined, err := api.NewEnvelope(api.EventRoomJoined, api.RoomJoinedPayload{RoomCode: "AB12CD34"})
	require.NoError(t, err)
	c.push(joined)

	for i := 0; i < sendBufferSize; i++ {
		env, err := api.NewEnvelope(api.EventAnnotationAdded, api.AnnotationPayload{PDFID: "d1"})
		require.NoError(t, err)
		c.push(env)
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	assert.True(t, closed, "slow client must be disconnected")

	// Очередь не теряет события: первым остается снимок комнаты
	var events []string
	for env := range c.send {
		events = append(events, env.Event)
	}
	require.Len(t, events, sendBufferSize)
	assert.Equal(t, api.EventRoomJoined, events[0])

	// После закрытия события не ставятся в очередь
	c.push(api.Envelope{Event: api.EventError})
	c.close()
}
