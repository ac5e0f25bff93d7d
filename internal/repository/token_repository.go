package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ssipfix/internal/models"
	"time"

	"github.com/jmoiron/sqlx"
)

type tokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.RememberToken) error {
	query := `
		INSERT INTO remember_tokens (selector, user_id, salt, secret_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, token.Selector, token.UserID, token.Salt, token.SecretHash, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store remember token: %w", err)
	}

	return nil
}

func (r *tokenRepository) GetBySelector(ctx context.Context, selector string) (*models.RememberToken, error) {
	query := `
		SELECT selector, user_id, salt, secret_hash, expires_at, created_at
		FROM remember_tokens
		WHERE selector = $1
	`

	var token models.RememberToken
	err := r.db.GetContext(ctx, &token, query, selector)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get remember token: %w", err)
	}

	return &token, nil
}

func (r *tokenRepository) DeleteBySelector(ctx context.Context, selector string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM remember_tokens WHERE selector = $1`, selector); err != nil {
		return fmt.Errorf("failed to delete remember token: %w", err)
	}
	return nil
}

func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM remember_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to revoke remember tokens: %w", err)
	}
	return nil
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM remember_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired remember tokens: %w", err)
	}

	return result.RowsAffected()
}
