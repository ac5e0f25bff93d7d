package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"ssipfix/internal/logger"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	rememberSecretBytes = 32
	rememberSaltBytes   = 16
)

// IssuedToken is handed to the client once. Only Selector is ever stored in clear.
type IssuedToken struct {
	Selector  string
	Secret    string
	ExpiresAt time.Time
}

type TokenService interface {
	Issue(ctx context.Context, userID int64) (*IssuedToken, error)
	Validate(ctx context.Context, selector, secret string) (int64, error)
	Revoke(ctx context.Context, userID int64) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type tokenService struct {
	tokenRepo repository.TokenRepository
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(tokenRepo repository.TokenRepository, ttl time.Duration) TokenService {
	return &tokenService{
		tokenRepo: tokenRepo,
		ttl:       ttl,
		now:       time.Now,
	}
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashSecret(salt, secret string) string {
	sum := sha256.Sum256([]byte(salt + secret))
	return hex.EncodeToString(sum[:])
}

func (s *tokenService) Issue(ctx context.Context, userID int64) (*IssuedToken, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	secret, err := randomHex(rememberSecretBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate remember secret: %w", err)
	}
	salt, err := randomHex(rememberSaltBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate remember salt: %w", err)
	}

	token := &models.RememberToken{
		Selector:   uuid.NewString(),
		UserID:     userID,
		Salt:       salt,
		SecretHash: hashSecret(salt, secret),
		ExpiresAt:  s.now().Add(s.ttl),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return &IssuedToken{
		Selector:  token.Selector,
		Secret:    secret,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Validate fails closed: any malformed input, missing row, expiry or digest mismatch
// yields ErrInvalidToken.
func (s *tokenService) Validate(ctx context.Context, selector, secret string) (int64, error) {
	// only the lowercase hyphenated form is ever issued
	parsed, err := uuid.Parse(selector)
	if err != nil || parsed.String() != selector {
		return 0, ErrInvalidToken
	}
	if len(secret) != rememberSecretBytes*2 {
		return 0, ErrInvalidToken
	}
	if _, err := hex.DecodeString(secret); err != nil {
		return 0, ErrInvalidToken
	}

	token, err := s.tokenRepo.GetBySelector(ctx, selector)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.ErrorWithFields("Failed to load remember token", err)
		}
		return 0, ErrInvalidToken
	}

	if !s.now().Before(token.ExpiresAt) {
		if err := s.tokenRepo.DeleteBySelector(ctx, selector); err != nil {
			logger.WarnWithFields("Failed to delete expired remember token", err)
		}
		return 0, ErrInvalidToken
	}

	expected := hashSecret(token.Salt, secret)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token.SecretHash)) != 1 {
		return 0, ErrInvalidToken
	}

	return token.UserID, nil
}

func (s *tokenService) Revoke(ctx context.Context, userID int64) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

func (s *tokenService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.tokenRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logger.Log.Info("Purged expired remember tokens", zap.Int64("count", removed))
	}
	return removed, nil
}
