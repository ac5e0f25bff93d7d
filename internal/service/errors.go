package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrPostNotFound    = errors.New("post not found")
	ErrStorageConflict = errors.New("storage conflict")
	ErrStorageFailure  = errors.New("storage failure")
	ErrInvalidReaction = errors.New("invalid reaction")

	ErrInvalidCredential = errors.New("invalid username or password")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidToken      = errors.New("invalid remember-me token")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidInput      = errors.New("invalid input")

	ErrNoteNotFound = errors.New("note not found")
	ErrForbidden    = errors.New("forbidden")
)

type RejectionReason string

const (
	RejectUnsupportedType RejectionReason = "unsupported_type"
	RejectTooLarge        RejectionReason = "too_large"
)

// RejectionError is returned for uploads refused on type or size. Message is safe to show to clients.
type RejectionError struct {
	Reason  RejectionReason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("media rejected (%s): %s", e.Reason, e.Message)
}
