package repository

import (
	"context"
	"errors"
	"ssipfix/internal/models"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("record already exists")
	ErrInvalidPassword = errors.New("invalid password")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	VerifyPassword(ctx context.Context, username, password string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, newPassword string) error
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPostID(ctx context.Context, postID int64) ([]models.Comment, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *models.Note) error
	GetByID(ctx context.Context, noteID int64) (*models.Note, error)
	ListVisible(ctx context.Context, viewerID int64) ([]models.Note, error)
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, noteID, userID int64) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.RememberToken) error
	GetBySelector(ctx context.Context, selector string) (*models.RememberToken, error)
	DeleteBySelector(ctx context.Context, selector string) error
	DeleteByUserID(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ReactionTx is the set of statements a reaction toggle runs inside one transaction.
type ReactionTx interface {
	// LockPost takes a row lock on the post and fails with ErrNotFound when it is missing.
	LockPost(ctx context.Context, postID int64) error
	// GetReaction returns nil, nil when the user has no reaction on the post.
	GetReaction(ctx context.Context, userID, postID int64) (*models.Reaction, error)
	InsertReaction(ctx context.Context, userID, postID int64, kind models.ReactionKind) error
	UpdateReactionKind(ctx context.Context, userID, postID int64, kind models.ReactionKind) error
	DeleteReaction(ctx context.Context, userID, postID int64) error
	AdjustCounters(ctx context.Context, postID int64, likeDelta, dislikeDelta int) (likes int, dislikes int, err error)
}

type ReactionRepository interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx ReactionTx) error) error
	GetUserReaction(ctx context.Context, userID, postID int64) (*models.Reaction, error)
	GetCounts(ctx context.Context, postID int64) (likes int, dislikes int, err error)
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUserID(ctx context.Context, userID int64) error
}

type TablesRepository interface {
	CountTablesDB(ctx context.Context) (int, error)
}

type Repository struct {
	Users     UserRepository
	Posts     PostRepository
	Comments  CommentRepository
	Notes     NoteRepository
	Tokens    TokenRepository
	Reactions ReactionRepository
	Sessions  SessionStore
	Tables    TablesRepository
}

func NewRepository(db *sqlx.DB, rdb *redis.Client, sessionTTL time.Duration) *Repository {
	return &Repository{
		Users:     NewUserRepository(db),
		Posts:     NewPostRepository(db),
		Comments:  NewCommentRepository(db),
		Notes:     NewNoteRepository(db),
		Tokens:    NewTokenRepository(db),
		Reactions: NewReactionRepository(db),
		Sessions:  NewRedisSessionStore(rdb, sessionTTL),
		Tables:    NewTablesRepository(db),
	}
}

// IsConflict reports whether err is a serialization failure, a deadlock or a unique
// violation. Those are safe to retry as a whole transaction.
func IsConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "23505":
		return true
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
