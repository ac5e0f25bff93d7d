package service

import (
	"context"
	"errors"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type postCounts struct {
	likes    int
	dislikes int
}

type reactionKey struct {
	userID int64
	postID int64
}

// fakeReactionStore serializes transactions and commits a working copy only when fn succeeds.
type fakeReactionStore struct {
	mu        sync.Mutex
	posts     map[int64]postCounts
	reactions map[reactionKey]models.ReactionKind
	failNext  []error
	txCount   int
}

func newFakeReactionStore(postIDs ...int64) *fakeReactionStore {
	f := &fakeReactionStore{
		posts:     make(map[int64]postCounts),
		reactions: make(map[reactionKey]models.ReactionKind),
	}
	for _, id := range postIDs {
		f.posts[id] = postCounts{}
	}
	return f
}

func (f *fakeReactionStore) WithinTx(ctx context.Context, fn func(tx repository.ReactionTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f.txCount++
	if len(f.failNext) > 0 {
		err := f.failNext[0]
		f.failNext = f.failNext[1:]
		return err
	}

	tx := &fakeReactionTx{
		posts:     make(map[int64]postCounts, len(f.posts)),
		reactions: make(map[reactionKey]models.ReactionKind, len(f.reactions)),
	}
	for k, v := range f.posts {
		tx.posts[k] = v
	}
	for k, v := range f.reactions {
		tx.reactions[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}

	f.posts = tx.posts
	f.reactions = tx.reactions
	return nil
}

func (f *fakeReactionStore) GetUserReaction(ctx context.Context, userID, postID int64) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kind, ok := f.reactions[reactionKey{userID, postID}]
	if !ok {
		return nil, nil
	}
	return &models.Reaction{UserID: userID, PostID: postID, Kind: kind}, nil
}

func (f *fakeReactionStore) GetCounts(ctx context.Context, postID int64) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.posts[postID]
	if !ok {
		return 0, 0, repository.ErrNotFound
	}
	return c.likes, c.dislikes, nil
}

// rowCounts counts reaction rows per kind for one post.
func (f *fakeReactionStore) rowCounts(postID int64) (likes, dislikes int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for k, kind := range f.reactions {
		if k.postID != postID {
			continue
		}
		switch kind {
		case models.ReactionLike:
			likes++
		case models.ReactionDislike:
			dislikes++
		}
	}
	return likes, dislikes
}

func (f *fakeReactionStore) counts(postID int64) postCounts {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[postID]
}

type fakeReactionTx struct {
	posts     map[int64]postCounts
	reactions map[reactionKey]models.ReactionKind
}

func (t *fakeReactionTx) LockPost(ctx context.Context, postID int64) error {
	if _, ok := t.posts[postID]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (t *fakeReactionTx) GetReaction(ctx context.Context, userID, postID int64) (*models.Reaction, error) {
	kind, ok := t.reactions[reactionKey{userID, postID}]
	if !ok {
		return nil, nil
	}
	return &models.Reaction{UserID: userID, PostID: postID, Kind: kind}, nil
}

func (t *fakeReactionTx) InsertReaction(ctx context.Context, userID, postID int64, kind models.ReactionKind) error {
	key := reactionKey{userID, postID}
	if _, ok := t.reactions[key]; ok {
		return errors.New("duplicate reaction")
	}
	t.reactions[key] = kind
	return nil
}

func (t *fakeReactionTx) UpdateReactionKind(ctx context.Context, userID, postID int64, kind models.ReactionKind) error {
	t.reactions[reactionKey{userID, postID}] = kind
	return nil
}

func (t *fakeReactionTx) DeleteReaction(ctx context.Context, userID, postID int64) error {
	delete(t.reactions, reactionKey{userID, postID})
	return nil
}

func (t *fakeReactionTx) AdjustCounters(ctx context.Context, postID int64, likeDelta, dislikeDelta int) (int, int, error) {
	c := t.posts[postID]
	c.likes += likeDelta
	c.dislikes += dislikeDelta
	if c.likes < 0 || c.dislikes < 0 {
		return 0, 0, errors.New("counter check constraint violated")
	}
	t.posts[postID] = c
	return c.likes, c.dislikes, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]models.RememberToken
	gets   int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]models.RememberToken)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *models.RememberToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Selector] = *token
	return nil
}

func (r *fakeTokenRepo) GetBySelector(ctx context.Context, selector string) (*models.RememberToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	token, ok := r.tokens[selector]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &token, nil
}

func (r *fakeTokenRepo) DeleteBySelector(ctx context.Context, selector string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, selector)
	return nil
}

func (r *fakeTokenRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for selector, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, selector)
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for selector, token := range r.tokens {
		if !now.Before(token.ExpiresAt) {
			delete(r.tokens, selector)
			removed++
		}
	}
	return removed, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.Session)}
}

func (s *fakeSessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = *session
	return nil
}

func (s *fakeSessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *fakeSessionStore) DeleteByUserID(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID int64, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Post), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByPostID(ctx context.Context, postID int64) ([]models.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]models.Comment), args.Error(1)
}

type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, noteID int64) (*models.Note, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) ListVisible(ctx context.Context, viewerID int64) ([]models.Note, error) {
	args := m.Called(ctx, viewerID)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, noteID, userID int64) error {
	args := m.Called(ctx, noteID, userID)
	return args.Error(0)
}
