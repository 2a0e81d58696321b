package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/storage"
)

// CreateRoom creates a new room
func (s *Storage) CreateRoom(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (code, creator, created_at)
		VALUES (?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, room.Code, room.Creator, room.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrRoomAlreadyExists
		}
		return fmt.Errorf("failed to insert room: %w", err)
	}

	return nil
}

// GetRoom retrieves room by code
func (s *Storage) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	query := `
		SELECT code, creator, created_at
		FROM rooms
		WHERE code = ?
	`

	room := &models.Room{}
	err := s.db.QueryRowContext(ctx, query, code).Scan(&room.Code, &room.Creator, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}
