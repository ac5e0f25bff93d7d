package service

import (
	"context"
	"errors"
	"ssipfix/internal/models"
	"sync"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCountersMatchRows(t *testing.T, store *fakeReactionStore, postID int64) {
	t.Helper()
	likes, dislikes := store.rowCounts(postID)
	c := store.counts(postID)
	assert.Equal(t, likes, c.likes, "like counter drifted from reaction rows")
	assert.Equal(t, dislikes, c.dislikes, "dislike counter drifted from reaction rows")
}

func TestReactionService_ToggleCycle(t *testing.T) {
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)
	ctx := context.Background()

	steps := []struct {
		name string
		kind models.ReactionKind
		want ReactionResult
	}{
		{"like adds", models.ReactionLike, ReactionResult{Likes: 1, UserLiked: true}},
		{"like again removes", models.ReactionLike, ReactionResult{}},
		{"dislike adds", models.ReactionDislike, ReactionResult{Dislikes: 1, UserDisliked: true}},
		{"like switches", models.ReactionLike, ReactionResult{Likes: 1, UserLiked: true}},
		{"dislike switches back", models.ReactionDislike, ReactionResult{Dislikes: 1, UserDisliked: true}},
		{"dislike again removes", models.ReactionDislike, ReactionResult{}},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			got, err := svc.Toggle(ctx, 7, 42, step.kind)
			require.NoError(t, err)
			assert.Equal(t, step.want, *got)
			assert.False(t, got.UserLiked && got.UserDisliked)
			assertCountersMatchRows(t, store, 42)
		})
	}
}

func TestReactionService_ToggleIsIdempotentInPairs(t *testing.T) {
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, 1, 42, models.ReactionDislike)
	require.NoError(t, err)

	before := store.counts(42)
	for i := 0; i < 2; i++ {
		_, err := svc.Toggle(ctx, 2, 42, models.ReactionLike)
		require.NoError(t, err)
	}

	assert.Equal(t, before, store.counts(42))
	assertCountersMatchRows(t, store, 42)
}

func TestReactionService_Rejections(t *testing.T) {
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)
	ctx := context.Background()

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := svc.Toggle(ctx, 0, 42, models.ReactionLike)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := svc.Toggle(ctx, 7, 42, models.ReactionKind(9))
		assert.ErrorIs(t, err, ErrInvalidReaction)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.Toggle(ctx, 7, 404, models.ReactionLike)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	assert.Equal(t, 1, store.txCount, "only the missing-post toggle reaches storage")
	assert.Equal(t, postCounts{}, store.counts(42))
}

func TestReactionService_ConcurrentDistinctUsers(t *testing.T) {
	const users = 64
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, users)
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, userID, 42, models.ReactionLike); err != nil {
				errs <- err
			}
		}(int64(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, postCounts{likes: users}, store.counts(42))
	assertCountersMatchRows(t, store, 42)

	// every user switches at once
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, _ = svc.Toggle(ctx, userID, 42, models.ReactionDislike)
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, postCounts{dislikes: users}, store.counts(42))
	assertCountersMatchRows(t, store, 42)
}

func TestReactionService_ConcurrentSameUser(t *testing.T) {
	const presses = 10
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < presses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Toggle(ctx, 7, 42, models.ReactionLike)
		}()
	}
	wg.Wait()

	// an even number of presses always lands back on no reaction
	assert.Equal(t, postCounts{}, store.counts(42))
	assertCountersMatchRows(t, store, 42)
}

func TestReactionService_ConflictRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("retried once then succeeds", func(t *testing.T) {
		store := newFakeReactionStore(42)
		store.failNext = []error{&pq.Error{Code: "40001"}}
		svc := NewReactionService(store)

		got, err := svc.Toggle(ctx, 7, 42, models.ReactionLike)

		require.NoError(t, err)
		assert.Equal(t, 1, got.Likes)
		assert.Equal(t, 2, store.txCount)
	})

	t.Run("second conflict surfaces", func(t *testing.T) {
		store := newFakeReactionStore(42)
		store.failNext = []error{&pq.Error{Code: "40P01"}, &pq.Error{Code: "23505"}}
		svc := NewReactionService(store)

		_, err := svc.Toggle(ctx, 7, 42, models.ReactionLike)

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.ErrorIs(t, err, ErrStorageConflict)
		assert.Equal(t, 2, store.txCount)
		assert.Equal(t, postCounts{}, store.counts(42))
	})

	t.Run("other failures are not retried", func(t *testing.T) {
		store := newFakeReactionStore(42)
		store.failNext = []error{errors.New("disk full")}
		svc := NewReactionService(store)

		_, err := svc.Toggle(ctx, 7, 42, models.ReactionLike)

		assert.ErrorIs(t, err, ErrStorageFailure)
		assert.NotErrorIs(t, err, ErrStorageConflict)
		assert.Equal(t, 1, store.txCount)
	})
}

func TestReactionService_CancelledContext(t *testing.T) {
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Toggle(ctx, 7, 42, models.ReactionLike)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, postCounts{}, store.counts(42))
}

func TestReactionService_State(t *testing.T) {
	store := newFakeReactionStore(42)
	svc := NewReactionService(store)
	ctx := context.Background()

	_, err := svc.Toggle(ctx, 7, 42, models.ReactionDislike)
	require.NoError(t, err)

	state, err := svc.State(ctx, 7, 42)
	require.NoError(t, err)
	assert.Equal(t, ReactionResult{Dislikes: 1, UserDisliked: true}, *state)

	state, err = svc.State(ctx, 0, 42)
	require.NoError(t, err)
	assert.Equal(t, ReactionResult{Dislikes: 1}, *state)

	_, err = svc.State(ctx, 7, 404)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCounterDelta(t *testing.T) {
	t.Run("like", func(t *testing.T) {
		like, dislike, err := counterDelta(models.ReactionLike, -1)
		require.NoError(t, err)
		assert.Equal(t, -1, like)
		assert.Equal(t, 0, dislike)
	})

	t.Run("dislike", func(t *testing.T) {
		like, dislike, err := counterDelta(models.ReactionDislike, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, like)
		assert.Equal(t, 1, dislike)
	})

	t.Run("unknown kind", func(t *testing.T) {
		like, dislike, err := counterDelta(models.ReactionKind(9), 1)
		assert.ErrorIs(t, err, ErrInvalidReaction)
		assert.Zero(t, like)
		assert.Zero(t, dislike)
	})
}
