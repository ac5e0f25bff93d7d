package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type User struct {
	UserID         int64     `json:"userId" db:"user_id"`
	Username       string    `json:"username" db:"username"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	IsAnonymous    bool      `json:"isAnonymous" db:"is_anonymous"`
	ProfilePicture string    `json:"profilePicture" db:"profile_picture"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type Post struct {
	PostID       int64     `json:"postId" db:"post_id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Content      string    `json:"content" db:"content"`
	MediaPath    *string   `json:"mediaPath,omitempty" db:"media_path"`
	MediaType    *string   `json:"mediaType,omitempty" db:"media_type"`
	LikeCount    int       `json:"likeCount" db:"like_count"`
	DislikeCount int       `json:"dislikeCount" db:"dislike_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type Comment struct {
	CommentID int64     `json:"commentId" db:"comment_id"`
	PostID    int64     `json:"postId" db:"post_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	MediaPath *string   `json:"mediaPath,omitempty" db:"media_path"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Note is a community note. Only its owner may read private notes or change it.
type Note struct {
	NoteID    int64     `json:"noteId" db:"note_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	IsPublic  bool      `json:"isPublic" db:"is_public"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ReactionKind int8

const (
	ReactionLike ReactionKind = iota + 1
	ReactionDislike
)

func (k ReactionKind) String() string {
	switch k {
	case ReactionLike:
		return "like"
	case ReactionDislike:
		return "dislike"
	default:
		return "unknown"
	}
}

func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

func ParseReactionKind(s string) (ReactionKind, error) {
	switch s {
	case "like":
		return ReactionLike, nil
	case "dislike":
		return ReactionDislike, nil
	default:
		return 0, fmt.Errorf("unknown reaction kind %q", s)
	}
}

func (k ReactionKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid reaction kind %d", k)
	}
	return k.String(), nil
}

func (k *ReactionKind) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ReactionKind", src)
	}

	parsed, err := ParseReactionKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Reaction struct {
	UserID    int64        `json:"userId" db:"user_id"`
	PostID    int64        `json:"postId" db:"post_id"`
	Kind      ReactionKind `json:"kind" db:"type"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// RememberToken is the persisted half of a remember-me credential.
// The raw secret never reaches storage, only its salted digest.
type RememberToken struct {
	Selector   string    `db:"selector"`
	UserID     int64     `db:"user_id"`
	Salt       string    `db:"salt"`
	SecretHash string    `db:"secret_hash"`
	ExpiresAt  time.Time `db:"expires_at"`
	CreatedAt  time.Time `db:"created_at"`
}

type Session struct {
	SessionID   string    `json:"sessionId"`
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	IsAnonymous bool      `json:"isAnonymous"`
	CSRFToken   string    `json:"csrfToken"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type MediaCategory string

const (
	MediaPhoto MediaCategory = "photo"
	MediaVideo MediaCategory = "video"
)

type MediaAsset struct {
	Path         string        `json:"path"`
	Category     MediaCategory `json:"category"`
	SizeBytes    int64         `json:"sizeBytes"`
	Extension    string        `json:"extension"`
	DetectedMIME string        `json:"detectedMime"`
}
