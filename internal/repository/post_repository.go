package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ssipfix/internal/models"

	"github.com/jmoiron/sqlx"
)

type PostRepositoryImpl struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (user_id, content, media_path, media_type)
		VALUES ($1, $2, $3, $4)
		RETURNING post_id, like_count, dislike_count, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, post.UserID, post.Content, post.MediaPath, post.MediaType).
		Scan(&post.PostID, &post.LikeCount, &post.DislikeCount, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	query := `
		SELECT post_id, user_id, content, media_path, media_type, like_count, dislike_count, created_at
		FROM posts
		WHERE post_id = $1
	`

	var post models.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT post_id, user_id, content, media_path, media_type, like_count, dislike_count, created_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	posts := []models.Post{}
	err := r.db.SelectContext(ctx, &posts, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}
