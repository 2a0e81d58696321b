package storage

import (
	"context"

	"github.com/iudanet/studyroom/internal/models"
)

// RoomStorage defines interface for room persistence
type RoomStorage interface {
	// CreateRoom creates a new room
	// Returns ErrRoomAlreadyExists if code is taken
	CreateRoom(ctx context.Context, room *models.Room) error

	// GetRoom retrieves room by code
	// Returns ErrRoomNotFound if room doesn't exist
	GetRoom(ctx context.Context, code string) (*models.Room, error)
}
