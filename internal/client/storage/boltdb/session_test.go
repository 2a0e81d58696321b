package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/studyroom/internal/client/storage"
)

// создаём тестовое BoltDB хранилище
func createTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "session_test.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestStorage_SaveGetDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// До сохранения сессии нет
	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	now := time.Now()
	sess := &storage.Session{
		Username:  "alice",
		RoomCode:  "AB12CD34",
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
	require.NoError(t, store.SaveSession(ctx, sess))

	got, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	// Перезапись
	sess.Username = "bob"
	require.NoError(t, store.SaveSession(ctx, sess))
	got, err = store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	require.NoError(t, store.DeleteSession(ctx))
	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	// Повторное удаление
	err = store.DeleteSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestStorage_GetSession_Expired(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess := &storage.Session{
		Username:  "alice",
		CreatedAt: now.Add(-13 * time.Hour).Unix(),
		ExpiresAt: now.Add(-time.Hour).Unix(),
	}
	require.NoError(t, store.SaveSession(ctx, sess))

	_, err := store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestStorage_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.SaveSession(ctx, &storage.Session{Username: "x"}), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.DeleteSession(ctx), storage.ErrStorageClosed)
}
