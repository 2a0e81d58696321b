package storage

import (
	"context"
	"time"

	"github.com/iudanet/studyroom/internal/models"
)

// AnnotationStorage defines interface for annotation persistence.
// Annotations are scoped by room and document.
type AnnotationStorage interface {
	// AddAnnotation stores a new annotation of the room
	AddAnnotation(ctx context.Context, roomCode string, a *models.Annotation) error

	// UpdateAnnotation applies updates and stamps modified_by/modified_at
	// Returns ErrAnnotationNotFound if annotation doesn't exist
	UpdateAnnotation(ctx context.Context, roomCode, documentID, annotationID string,
		updates models.AnnotationUpdates, by string, at time.Time) (*models.Annotation, error)

	// DeleteAnnotation removes annotation
	// Returns ErrAnnotationNotFound if annotation doesn't exist
	DeleteAnnotation(ctx context.Context, roomCode, documentID, annotationID string) error

	// ListAnnotations returns room annotations grouped by document ID in creation order
	ListAnnotations(ctx context.Context, roomCode string) (map[string][]*models.Annotation, error)
}

// Storage объединяет все хранилища сервера
type Storage interface {
	RoomStorage
	DocumentStorage
	AnnotationStorage
	Ping(ctx context.Context) error
}
