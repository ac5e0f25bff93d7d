package test

import (
	"context"
	"ssipfix/internal/models"
	"ssipfix/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ResolveCaller(ctx context.Context, creds service.Credentials) (*service.Resolution, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Resolution), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string, remember bool) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password, remember)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, caller *models.Caller) error {
	args := m.Called(ctx, caller)
	return args.Error(0)
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Error(0)
}

type MockReactionService struct {
	mock.Mock
}

func (m *MockReactionService) Toggle(ctx context.Context, userID, postID int64, kind models.ReactionKind) (*service.ReactionResult, error) {
	args := m.Called(ctx, userID, postID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReactionResult), args.Error(1)
}

func (m *MockReactionService) State(ctx context.Context, userID, postID int64) (*service.ReactionResult, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReactionResult), args.Error(1)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Validate(ctx context.Context, data []byte, filename string, category models.MediaCategory) (*models.MediaAsset, error) {
	args := m.Called(ctx, data, filename, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaAsset), args.Error(1)
}

func (m *MockMediaService) Discard(ctx context.Context, asset *models.MediaAsset) {
	m.Called(ctx, asset)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) CreatePost(ctx context.Context, userID int64, content string, media *service.MediaUpload) (*models.Post, error) {
	args := m.Called(ctx, userID, content, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostService) GetPost(ctx context.Context, viewerID, postID int64) (*service.PostView, error) {
	args := m.Called(ctx, viewerID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PostView), args.Error(1)
}

func (m *MockPostService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) AddComment(ctx context.Context, userID, postID int64, content string, photo *service.MediaUpload) (*models.Comment, error) {
	args := m.Called(ctx, userID, postID, content, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Create(ctx context.Context, userID int64, in service.NoteInput) (*models.Note, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context, viewerID int64) ([]models.Note, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteService) Update(ctx context.Context, userID, noteID int64, in service.NoteInput) (*models.Note, error) {
	args := m.Called(ctx, userID, noteID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteService) Delete(ctx context.Context, userID, noteID int64) error {
	args := m.Called(ctx, userID, noteID)
	return args.Error(0)
}

type MockTablesService struct {
	mock.Mock
}

func (m *MockTablesService) Health(ctx context.Context) (*service.HealthStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HealthStatus), args.Error(1)
}
