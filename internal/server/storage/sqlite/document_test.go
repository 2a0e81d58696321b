package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/storage"
)

func newTestDocument(roomCode, name string) *models.Document {
	filename := "20260101_120000_" + name
	return &models.Document{
		ID:           uuid.New().String(),
		RoomCode:     roomCode,
		Filename:     filename,
		OriginalName: name,
		UploadedBy:   "alice",
		URL:          "/uploads/" + filename,
		UploadedAt:   time.Now(),
	}
}

func TestDocumentStorage_AddAndList(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestRoom(t, ctx, s, "ROOMAAAA")
	createTestRoom(t, ctx, s, "ROOMBBBB")

	first := newTestDocument("ROOMAAAA", "first.pdf")
	second := newTestDocument("ROOMAAAA", "second.pdf")
	other := newTestDocument("ROOMBBBB", "other.pdf")

	require.NoError(t, s.AddDocument(ctx, first))
	require.NoError(t, s.AddDocument(ctx, second))
	require.NoError(t, s.AddDocument(ctx, other))

	docs, err := s.ListDocuments(ctx, "ROOMAAAA")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Порядок загрузки сохраняется
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
	assert.Equal(t, "second.pdf", docs[1].OriginalName)
	assert.Equal(t, second.URL, docs[1].URL)
	assert.Equal(t, "ROOMAAAA", docs[1].RoomCode)
}

func TestDocumentStorage_AddDocument_UnknownRoom(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.AddDocument(context.Background(), newTestDocument("NOROOM00", "a.pdf"))
	assert.ErrorIs(t, err, storage.ErrRoomNotFound)
}

func TestDocumentStorage_ListDocuments_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	createTestRoom(t, ctx, s, "EMPTY000")

	docs, err := s.ListDocuments(ctx, "EMPTY000")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
