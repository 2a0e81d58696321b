package storage

import (
	"context"

	"github.com/iudanet/studyroom/internal/models"
)

// DocumentStorage defines interface for uploaded PDF metadata
type DocumentStorage interface {
	// AddDocument appends document to the room
	// Returns ErrRoomNotFound if room doesn't exist
	AddDocument(ctx context.Context, doc *models.Document) error

	// ListDocuments returns room documents in upload order
	ListDocuments(ctx context.Context, roomCode string) ([]*models.Document, error)
}
