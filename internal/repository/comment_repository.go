package repository

import (
	"context"
	"fmt"
	"ssipfix/internal/models"

	"github.com/jmoiron/sqlx"
)

type CommentRepositoryImpl struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) *CommentRepositoryImpl {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, content, media_path)
		VALUES ($1, $2, $3, $4)
		RETURNING comment_id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, comment.PostID, comment.UserID, comment.Content, comment.MediaPath).
		Scan(&comment.CommentID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

func (r *CommentRepositoryImpl) ListByPostID(ctx context.Context, postID int64) ([]models.Comment, error) {
	query := `
		SELECT comment_id, post_id, user_id, content, media_path, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}
