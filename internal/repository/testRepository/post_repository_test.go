package testRepository

import (
	"context"
	"database/sql"
	"fmt"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

func stringPtr(s string) *string {
	return &s
}

var postColumns = []string{"post_id", "user_id", "content", "media_path", "media_type", "like_count", "dislike_count", "created_at"}

func TestPostRepositoryImpl_Create(t *testing.T) {
	tests := []struct {
		name        string
		post        *models.Post
		setupMock   func(mock sqlmock.Sqlmock)
		expectError bool
		errorMsg    string
	}{
		{
			name: "text post",
			post: &models.Post{UserID: 1, Content: "hello"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO posts`).
					WithArgs(int64(1), "hello", nil, nil).
					WillReturnRows(sqlmock.NewRows([]string{"post_id", "like_count", "dislike_count", "created_at"}).
						AddRow(int64(42), 0, 0, time.Now()))
			},
		},
		{
			name: "post with photo",
			post: &models.Post{
				UserID:    1,
				Content:   "look",
				MediaPath: stringPtr("photos/abc.png"),
				MediaType: stringPtr("photo"),
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO posts`).
					WithArgs(int64(1), "look", "photos/abc.png", "photo").
					WillReturnRows(sqlmock.NewRows([]string{"post_id", "like_count", "dislike_count", "created_at"}).
						AddRow(int64(43), 0, 0, time.Now()))
			},
		},
		{
			name: "database error",
			post: &models.Post{UserID: 1, Content: "hello"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO posts`).
					WillReturnError(fmt.Errorf("connection refused"))
			},
			expectError: true,
			errorMsg:    "failed to create post",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := repository.NewPostRepository(db)
			tt.setupMock(mock)

			err := repo.Create(context.Background(), tt.post)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
				assert.NotZero(t, tt.post.PostID)
				assert.Zero(t, tt.post.LikeCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_GetByID(t *testing.T) {
	tests := []struct {
		name        string
		postID      int64
		setupMock   func(mock sqlmock.Sqlmock)
		expectError error
	}{
		{
			name:   "found",
			postID: 42,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM posts WHERE post_id = \$1`).
					WithArgs(int64(42)).
					WillReturnRows(sqlmock.NewRows(postColumns).
						AddRow(int64(42), int64(1), "hello", nil, nil, 5, 2, time.Now()))
			},
		},
		{
			name:   "not found",
			postID: 404,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM posts WHERE post_id = \$1`).
					WithArgs(int64(404)).
					WillReturnError(sql.ErrNoRows)
			},
			expectError: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := repository.NewPostRepository(db)
			tt.setupMock(mock)

			post, err := repo.GetByID(context.Background(), tt.postID)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, post)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 5, post.LikeCount)
				assert.Equal(t, 2, post.DislikeCount)
				assert.Nil(t, post.MediaPath)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryImpl_List(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewPostRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM posts ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(postColumns).
			AddRow(int64(2), int64(1), "second", "videos/x.mp4", "video", 0, 0, time.Now()).
			AddRow(int64(1), int64(1), "first", nil, nil, 1, 0, time.Now()))

	posts, err := repo.List(context.Background(), 0, -5)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.NotNil(t, posts[0].MediaType)
	assert.Equal(t, "video", *posts[0].MediaType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryImpl(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := repository.NewCommentRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(42), int64(1), "nice", "photos/c.jpg").
		WillReturnRows(sqlmock.NewRows([]string{"comment_id", "created_at"}).AddRow(int64(9), time.Now()))

	comment := &models.Comment{PostID: 42, UserID: 1, Content: "nice", MediaPath: stringPtr("photos/c.jpg")}
	require.NoError(t, repo.Create(ctx, comment))
	assert.Equal(t, int64(9), comment.CommentID)

	mock.ExpectQuery(`SELECT (.+) FROM comments WHERE post_id = \$1 ORDER BY created_at ASC`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"comment_id", "post_id", "user_id", "content", "media_path", "created_at"}).
			AddRow(int64(9), int64(42), int64(1), "nice", "photos/c.jpg", time.Now()))

	comments, err := repo.ListByPostID(ctx, 42)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Content)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepositoryImpl(t *testing.T) {
	ctx := context.Background()
	noteColumns := []string{"note_id", "user_id", "title", "content", "is_public", "created_at", "updated_at"}

	t.Run("create and list", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewNoteRepository(db)

		mock.ExpectQuery(`INSERT INTO community_notes`).
			WithArgs(int64(1), "Title", "Body", true).
			WillReturnRows(sqlmock.NewRows([]string{"note_id", "created_at", "updated_at"}).AddRow(int64(3), time.Now(), time.Now()))

		note := &models.Note{UserID: 1, Title: "Title", Content: "Body", IsPublic: true}
		require.NoError(t, repo.Create(ctx, note))
		assert.Equal(t, int64(3), note.NoteID)

		mock.ExpectQuery(`SELECT (.+) FROM community_notes WHERE user_id = \$1 OR is_public = TRUE`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(noteColumns).
				AddRow(int64(3), int64(1), "Title", "Body", true, time.Now(), time.Now()))

		notes, err := repo.ListVisible(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, notes, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update of foreign note affects nothing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewNoteRepository(db)

		mock.ExpectQuery(`UPDATE community_notes`).
			WithArgs("T", "C", false, int64(3), int64(2)).
			WillReturnError(sql.ErrNoRows)

		err := repo.Update(ctx, &models.Note{NoteID: 3, UserID: 2, Title: "T", Content: "C"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := repository.NewNoteRepository(db)

		mock.ExpectExec(`DELETE FROM community_notes WHERE note_id = \$1 AND user_id = \$2`).
			WithArgs(int64(3), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM community_notes WHERE note_id = \$1 AND user_id = \$2`).
			WithArgs(int64(3), int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, 3, 1))
		assert.ErrorIs(t, repo.Delete(ctx, 3, 2), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
