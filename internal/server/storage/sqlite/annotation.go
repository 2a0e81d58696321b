package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/studyroom/internal/models"
	"github.com/iudanet/studyroom/internal/server/storage"
)

const annotationColumns = `id, document_id, type, page, x, y, width, height, text, color,
	created_by, created_at, modified_by, modified_at`

// scanner общий интерфейс sql.Row и sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(row scanner) (*models.Annotation, error) {
	a := &models.Annotation{}
	var modifiedBy sql.NullString
	var modifiedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.Type,
		&a.Page,
		&a.Coordinates.X,
		&a.Coordinates.Y,
		&a.Coordinates.Width,
		&a.Coordinates.Height,
		&a.Text,
		&a.Color,
		&a.CreatedBy,
		&a.CreatedAt,
		&modifiedBy,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if modifiedBy.Valid {
		a.ModifiedBy = modifiedBy.String
	}
	if modifiedAt.Valid {
		a.ModifiedAt = &modifiedAt.Time
	}

	return a, nil
}

// AddAnnotation stores a new annotation of the room
func (s *Storage) AddAnnotation(ctx context.Context, roomCode string, a *models.Annotation) error {
	query := `
		INSERT INTO annotations (id, room_code, document_id, type, page, x, y, width, height,
			text, color, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		roomCode,
		a.DocumentID,
		a.Type,
		a.Page,
		a.Coordinates.X,
		a.Coordinates.Y,
		a.Coordinates.Width,
		a.Coordinates.Height,
		a.Text,
		a.Color,
		a.CreatedBy,
		a.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrRoomNotFound
		}
		return fmt.Errorf("failed to insert annotation: %w", err)
	}

	return nil
}

// UpdateAnnotation applies updates and stamps modified_by/modified_at
func (s *Storage) UpdateAnnotation(
	ctx context.Context,
	roomCode, documentID, annotationID string,
	updates models.AnnotationUpdates,
	by string,
	at time.Time,
) (*models.Annotation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE room_code = ? AND document_id = ? AND id = ?`,
		roomCode, documentID, annotationID,
	)
	a, err := scanAnnotation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAnnotationNotFound
		}
		return nil, fmt.Errorf("failed to get annotation: %w", err)
	}

	a.Apply(updates, by, at)

	_, err = tx.ExecContext(ctx, `
		UPDATE annotations
		SET text = ?, color = ?, x = ?, y = ?, width = ?, height = ?, modified_by = ?, modified_at = ?
		WHERE id = ?
	`,
		a.Text,
		a.Color,
		a.Coordinates.X,
		a.Coordinates.Y,
		a.Coordinates.Width,
		a.Coordinates.Height,
		a.ModifiedBy,
		*a.ModifiedAt,
		a.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update annotation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return a, nil
}

// DeleteAnnotation removes annotation
func (s *Storage) DeleteAnnotation(ctx context.Context, roomCode, documentID, annotationID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM annotations WHERE room_code = ? AND document_id = ? AND id = ?`,
		roomCode, documentID, annotationID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrAnnotationNotFound
	}

	return nil
}

// ListAnnotations returns room annotations grouped by document ID in creation order
func (s *Storage) ListAnnotations(ctx context.Context, roomCode string) (map[string][]*models.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationColumns+` FROM annotations WHERE room_code = ? ORDER BY rowid`,
		roomCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotations: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]*models.Annotation)
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		result[a.DocumentID] = append(result[a.DocumentID], a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
