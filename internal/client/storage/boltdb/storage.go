package boltdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")
	bucketMeta    = []byte("meta")

	keyFormat = []byte("format")
)

// sessionFormat версия формата записи сессии.
// При несовпадении bucket сессии пересоздается: сессия одноразовая, миграция не нужна.
const sessionFormat = "1"

// Storage хранит локальную сессию клиента StudyRoom в файле bbolt
type Storage struct {
	db  *bbolt.DB
	now func() time.Time
}

// New открывает (или создает) файл dbPath.
// Таймаут защищает от зависания, если файл уже открыт другим процессом клиента.
func New(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open client database %s: %w", dbPath, err)
	}

	s := &Storage{db: db, now: time.Now}
	if err := s.prepare(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close закрывает файл. Повторный вызов безопасен.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// prepare создает buckets и сбрасывает сессию устаревшего формата
func (s *Storage) prepare() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create meta bucket: %w", err)
		}

		if !bytes.Equal(meta.Get(keyFormat), []byte(sessionFormat)) {
			if err := tx.DeleteBucket(bucketSession); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("failed to reset session bucket: %w", err)
			}
			if err := meta.Put(keyFormat, []byte(sessionFormat)); err != nil {
				return fmt.Errorf("failed to store session format: %w", err)
			}
		}

		if _, err := tx.CreateBucketIfNotExists(bucketSession); err != nil {
			return fmt.Errorf("failed to create session bucket: %w", err)
		}
		return nil
	})
}
