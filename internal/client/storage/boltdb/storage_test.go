package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/studyroom/internal/client/storage"
)

func TestNew_CreatesBuckets(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	err = store.db.View(func(tx *bbolt.Tx) error {
		assert.NotNil(t, tx.Bucket(bucketSession))
		meta := tx.Bucket(bucketMeta)
		require.NotNil(t, meta)
		assert.Equal(t, sessionFormat, string(meta.Get(keyFormat)))
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	// Каталог вместо файла БД
	store, err := New(context.Background(), t.TempDir())
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNew_SessionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, store.SaveSession(ctx, &storage.Session{
		Username:  "alice",
		RoomCode:  "AB12CD34",
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	session, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, "AB12CD34", session.RoomCode)
}

func TestNew_ResetsOutdatedSessionFormat(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "client.db")

	// Файл от старой версии клиента: bucket сессии без отметки формата
	db, err := bbolt.Open(dbPath, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucket(bucketSession)
		if err != nil {
			return err
		}
		return b.Put(sessionKey, []byte(`{"name":"legacy"}`))
	}))
	require.NoError(t, db.Close())

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestClose_Twice(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Nil(t, store.db)
	assert.NoError(t, store.Close())
}
