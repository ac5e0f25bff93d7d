package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ssipfix/internal/models"

	"github.com/jmoiron/sqlx"
)

type ReactionRepositoryImpl struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) *ReactionRepositoryImpl {
	return &ReactionRepositoryImpl{db: db}
}

func (r *ReactionRepositoryImpl) WithinTx(ctx context.Context, fn func(tx ReactionTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&reactionTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ReactionRepositoryImpl) GetUserReaction(ctx context.Context, userID, postID int64) (*models.Reaction, error) {
	return getReaction(ctx, r.db, userID, postID)
}

func (r *ReactionRepositoryImpl) GetCounts(ctx context.Context, postID int64) (int, int, error) {
	var likes, dislikes int
	err := r.db.QueryRowxContext(ctx, `SELECT like_count, dislike_count FROM posts WHERE post_id = $1`, postID).
		Scan(&likes, &dislikes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return 0, 0, fmt.Errorf("failed to get reaction counts: %w", err)
	}

	return likes, dislikes, nil
}

func getReaction(ctx context.Context, q sqlx.QueryerContext, userID, postID int64) (*models.Reaction, error) {
	query := `SELECT user_id, post_id, type, created_at FROM reactions WHERE user_id = $1 AND post_id = $2`

	var reaction models.Reaction
	err := sqlx.GetContext(ctx, q, &reaction, query, userID, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}

	return &reaction, nil
}

type reactionTx struct {
	tx *sqlx.Tx
}

func (t *reactionTx) LockPost(ctx context.Context, postID int64) error {
	var id int64
	err := t.tx.GetContext(ctx, &id, `SELECT post_id FROM posts WHERE post_id = $1 FOR UPDATE`, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return fmt.Errorf("failed to lock post: %w", err)
	}
	return nil
}

func (t *reactionTx) GetReaction(ctx context.Context, userID, postID int64) (*models.Reaction, error) {
	return getReaction(ctx, t.tx, userID, postID)
}

func (t *reactionTx) InsertReaction(ctx context.Context, userID, postID int64, kind models.ReactionKind) error {
	_, err := t.tx.ExecContext(ctx, `INSERT INTO reactions (user_id, post_id, type) VALUES ($1, $2, $3)`, userID, postID, kind)
	if err != nil {
		return fmt.Errorf("failed to insert reaction: %w", err)
	}
	return nil
}

func (t *reactionTx) UpdateReactionKind(ctx context.Context, userID, postID int64, kind models.ReactionKind) error {
	query := `UPDATE reactions SET type = $1, created_at = CURRENT_TIMESTAMP WHERE user_id = $2 AND post_id = $3`
	if _, err := t.tx.ExecContext(ctx, query, kind, userID, postID); err != nil {
		return fmt.Errorf("failed to update reaction: %w", err)
	}
	return nil
}

func (t *reactionTx) DeleteReaction(ctx context.Context, userID, postID int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM reactions WHERE user_id = $1 AND post_id = $2`, userID, postID); err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	return nil
}

// AdjustCounters applies relative deltas so concurrent writers never overwrite each other.
func (t *reactionTx) AdjustCounters(ctx context.Context, postID int64, likeDelta, dislikeDelta int) (int, int, error) {
	query := `
		UPDATE posts
		SET like_count = like_count + $1, dislike_count = dislike_count + $2
		WHERE post_id = $3
		RETURNING like_count, dislike_count
	`

	var likes, dislikes int
	if err := t.tx.QueryRowxContext(ctx, query, likeDelta, dislikeDelta, postID).Scan(&likes, &dislikes); err != nil {
		return 0, 0, fmt.Errorf("failed to adjust reaction counters: %w", err)
	}

	return likes, dislikes, nil
}
