package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"ssipfix/internal/logger"
	"ssipfix/internal/metrics"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const csrfTokenBytes = 32

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// Credentials are the raw identity cookies of one request. Any of them may be empty.
type Credentials struct {
	SessionID        string
	RememberSelector string
	RememberSecret   string
}

// Resolution tells the transport which identity the request carries and which cookies
// to rewrite. Session is set only when a new session was established from a remember-me token.
type Resolution struct {
	Caller        *models.Caller
	Session       *models.Session
	Restored      bool
	ClearSession  bool
	ClearRemember bool
}

type LoginResult struct {
	User    *models.User
	Session *models.Session
	Token   *IssuedToken
}

type AuthService interface {
	ResolveCaller(ctx context.Context, creds Credentials) (*Resolution, error)
	Login(ctx context.Context, username, password string, remember bool) (*LoginResult, error)
	Logout(ctx context.Context, caller *models.Caller) error
	Register(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	sessions   repository.SessionStore
	tokens     TokenService
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, sessions repository.SessionStore, tokens TokenService, sessionTTL time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func callerFromSession(session *models.Session) *models.Caller {
	return &models.Caller{
		UserID:      session.UserID,
		Username:    session.Username,
		IsAnonymous: session.IsAnonymous,
		SessionID:   session.SessionID,
		CSRFToken:   session.CSRFToken,
	}
}

// ResolveCaller checks the session first, then the remember-me token. A valid token
// establishes a fresh session exactly like a password login. Nothing valid means anonymous.
func (s *authService) ResolveCaller(ctx context.Context, creds Credentials) (*Resolution, error) {
	res := &Resolution{Caller: &models.Caller{}}

	if creds.SessionID != "" {
		session, err := s.sessions.Get(ctx, creds.SessionID)
		switch {
		case err == nil && s.now().Before(session.ExpiresAt):
			res.Caller = callerFromSession(session)
			return res, nil
		case err == nil, errors.Is(err, repository.ErrNotFound):
			res.ClearSession = true
		default:
			return res, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	if creds.RememberSelector == "" && creds.RememberSecret == "" {
		return res, nil
	}

	userID, err := s.tokens.Validate(ctx, creds.RememberSelector, creds.RememberSecret)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("remember_rejected").Inc()
		res.ClearRemember = true
		return res, nil
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			res.ClearRemember = true
			return res, nil
		}
		return res, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return res, err
	}

	metrics.AuthEvents.WithLabelValues("remember_restore").Inc()
	logger.Log.Info("Session restored from remember-me token", logger.WithUserID(user.UserID))

	res.Caller = callerFromSession(session)
	res.Session = session
	res.Restored = true
	res.ClearSession = false
	return res, nil
}

func (s *authService) startSession(ctx context.Context, user *models.User) (*models.Session, error) {
	csrfToken, err := randomHex(csrfTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}

	now := s.now()
	session := &models.Session{
		SessionID:   uuid.NewString(),
		UserID:      user.UserID,
		Username:    user.Username,
		IsAnonymous: user.IsAnonymous,
		CSRFToken:   csrfToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return session, nil
}

func (s *authService) Login(ctx context.Context, username, password string, remember bool) (*LoginResult, error) {
	user, err := s.userRepo.VerifyPassword(ctx, strings.TrimSpace(username), password)
	if err != nil {
		metrics.AuthEvents.WithLabelValues("login_failed").Inc()
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrAccountNotFound
		case errors.Is(err, repository.ErrInvalidPassword):
			return nil, ErrInvalidCredential
		default:
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user, Session: session}

	if remember {
		token, err := s.tokens.Issue(ctx, user.UserID)
		if err != nil {
			// login still succeeds, just without the remember-me cookie
			logger.ErrorWithFields("Failed to issue remember-me token", err, logger.WithUserID(user.UserID))
		} else {
			result.Token = token
		}
	}

	metrics.AuthEvents.WithLabelValues("login").Inc()
	logger.Log.Info("User logged in",
		logger.WithUserID(user.UserID),
		zap.Bool("remember", result.Token != nil),
	)

	return result, nil
}

// Logout destroys the session and every remember-me token of the user.
func (s *authService) Logout(ctx context.Context, caller *models.Caller) error {
	if caller == nil || !caller.Authenticated() {
		return nil
	}

	if caller.SessionID != "" {
		if err := s.sessions.Delete(ctx, caller.SessionID); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	if err := s.tokens.Revoke(ctx, caller.UserID); err != nil {
		return err
	}

	metrics.AuthEvents.WithLabelValues("logout").Inc()
	logger.Log.Info("User logged out", logger.WithUserID(caller.UserID))
	return nil
}

func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 3-30 letters, digits or underscores", ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	user := &models.User{Username: username}
	if err := s.userRepo.CreateUser(ctx, user, password); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	metrics.AuthEvents.WithLabelValues("register").Inc()
	logger.Log.Info("User registered", logger.WithUserID(user.UserID))
	return user, nil
}
