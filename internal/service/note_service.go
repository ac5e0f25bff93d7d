package service

import (
	"context"
	"errors"
	"fmt"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
	"strings"
	"unicode/utf8"
)

const maxNoteTitle = 255

type NoteInput struct {
	Title    string
	Content  string
	IsPublic bool
}

type NoteService interface {
	Create(ctx context.Context, userID int64, in NoteInput) (*models.Note, error)
	List(ctx context.Context, viewerID int64) ([]models.Note, error)
	Update(ctx context.Context, userID, noteID int64, in NoteInput) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID int64) error
}

type noteService struct {
	noteRepo repository.NoteRepository
}

func NewNoteService(noteRepo repository.NoteRepository) NoteService {
	return &noteService{noteRepo: noteRepo}
}

func (in NoteInput) normalize() (NoteInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)

	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Title) > maxNoteTitle {
		return in, fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, maxNoteTitle)
	}
	if in.Content == "" {
		return in, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	return in, nil
}

func (s *noteService) Create(ctx context.Context, userID int64, in NoteInput) (*models.Note, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		UserID:   userID,
		Title:    in.Title,
		Content:  in.Content,
		IsPublic: in.IsPublic,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return note, nil
}

func (s *noteService) List(ctx context.Context, viewerID int64) ([]models.Note, error) {
	if viewerID <= 0 {
		return nil, ErrUnauthenticated
	}

	notes, err := s.noteRepo.ListVisible(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return notes, nil
}

func (s *noteService) owned(ctx context.Context, userID, noteID int64) (*models.Note, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	if note.UserID != userID {
		return nil, ErrForbidden
	}
	return note, nil
}

func (s *noteService) Update(ctx context.Context, userID, noteID int64, in NoteInput) (*models.Note, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	note, err := s.owned(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	note.Title = in.Title
	note.Content = in.Content
	note.IsPublic = in.IsPublic

	if err := s.noteRepo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return note, nil
}

func (s *noteService) Delete(ctx context.Context, userID, noteID int64) error {
	if _, err := s.owned(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.noteRepo.Delete(ctx, noteID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}
