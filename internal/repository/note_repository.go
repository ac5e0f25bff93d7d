package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ssipfix/internal/models"

	"github.com/jmoiron/sqlx"
)

type NoteRepositoryImpl struct {
	db *sqlx.DB
}

func NewNoteRepository(db *sqlx.DB) *NoteRepositoryImpl {
	return &NoteRepositoryImpl{db: db}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO community_notes (user_id, title, content, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING note_id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, note.UserID, note.Title, note.Content, note.IsPublic).
		Scan(&note.NoteID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *NoteRepositoryImpl) GetByID(ctx context.Context, noteID int64) (*models.Note, error) {
	query := `
		SELECT note_id, user_id, title, content, is_public, created_at, updated_at
		FROM community_notes
		WHERE note_id = $1
	`

	var note models.Note
	err := r.db.GetContext(ctx, &note, query, noteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return &note, nil
}

// ListVisible returns the viewer's own notes plus every public note, newest first.
func (r *NoteRepositoryImpl) ListVisible(ctx context.Context, viewerID int64) ([]models.Note, error) {
	query := `
		SELECT note_id, user_id, title, content, is_public, created_at, updated_at
		FROM community_notes
		WHERE user_id = $1 OR is_public = TRUE
		ORDER BY created_at DESC
	`

	notes := []models.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, viewerID); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE community_notes
		SET title = $1, content = $2, is_public = $3, updated_at = CURRENT_TIMESTAMP
		WHERE note_id = $4 AND user_id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, note.Title, note.Content, note.IsPublic, note.NoteID, note.UserID).
		Scan(&note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("note %d: %w", note.NoteID, ErrNotFound)
		}
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, noteID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM community_notes WHERE note_id = $1 AND user_id = $2`, noteID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("note %d: %w", noteID, ErrNotFound)
	}

	return nil
}
