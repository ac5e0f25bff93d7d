package service

import (
	"context"
	"errors"
	"fmt"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
)

type UserService interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}

type userService struct {
	userRepo repository.UserRepository
	sessions repository.SessionStore
	tokens   TokenService
}

func NewUserService(userRepo repository.UserRepository, sessions repository.SessionStore, tokens TokenService) UserService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
	}
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return user, nil
}

// ChangePassword also signs the user out everywhere: all sessions and remember-me
// tokens are dropped.
func (s *userService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.VerifyPassword(ctx, user.Username, currentPassword); err != nil {
		if errors.Is(err, repository.ErrInvalidPassword) {
			return ErrInvalidCredential
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}

	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return nil
}
