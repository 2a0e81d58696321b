package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/storage"
)

// AddDocument appends document to the room
func (s *Storage) AddDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (id, room_code, filename, original_name, uploaded_by, url, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.RoomCode,
		doc.Filename,
		doc.OriginalName,
		doc.UploadedBy,
		doc.URL,
		doc.UploadedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrRoomNotFound
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

// ListDocuments returns room documents in upload order
func (s *Storage) ListDocuments(ctx context.Context, roomCode string) ([]*models.Document, error) {
	query := `
		SELECT id, room_code, filename, original_name, uploaded_by, url, uploaded_at
		FROM documents
		WHERE room_code = ?
		ORDER BY rowid
	`

	rows, err := s.db.QueryContext(ctx, query, roomCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		doc := &models.Document{}
		if err := rows.Scan(
			&doc.ID,
			&doc.RoomCode,
			&doc.Filename,
			&doc.OriginalName,
			&doc.UploadedBy,
			&doc.URL,
			&doc.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return docs, nil
}
