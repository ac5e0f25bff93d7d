package service

import (
	"context"
	"errors"
	"fmt"
	"ssipfix/internal/logger"
	"ssipfix/internal/metrics"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"

	"go.uber.org/zap"
)

type ReactionResult struct {
	Likes        int
	Dislikes     int
	UserLiked    bool
	UserDisliked bool
}

type ReactionService interface {
	Toggle(ctx context.Context, userID, postID int64, kind models.ReactionKind) (*ReactionResult, error)
	State(ctx context.Context, userID, postID int64) (*ReactionResult, error)
}

type reactionService struct {
	reactionRepo repository.ReactionRepository
}

func NewReactionService(reactionRepo repository.ReactionRepository) ReactionService {
	return &reactionService{reactionRepo: reactionRepo}
}

const (
	transitionAdded    = "added"
	transitionRemoved  = "removed"
	transitionSwitched = "switched"
)

func counterDelta(kind models.ReactionKind, n int) (likeDelta, dislikeDelta int, err error) {
	switch kind {
	case models.ReactionLike:
		return n, 0, nil
	case models.ReactionDislike:
		return 0, n, nil
	}
	return 0, 0, fmt.Errorf("%w: kind %d", ErrInvalidReaction, kind)
}

// Toggle applies one like/dislike press. Pressing the active kind clears it, pressing the
// other kind switches, pressing with no reaction adds one. Reaction row and post counters
// change in the same transaction. A storage conflict is retried once.
func (s *reactionService) Toggle(ctx context.Context, userID, postID int64, kind models.ReactionKind) (*ReactionResult, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if !kind.Valid() {
		return nil, ErrInvalidReaction
	}
	if postID <= 0 {
		return nil, ErrPostNotFound
	}

	var (
		result     *ReactionResult
		transition string
		err        error
	)
	for attempt := 0; attempt < 2; attempt++ {
		result, transition, err = s.toggleOnce(ctx, userID, postID, kind)
		if err == nil || !repository.IsConflict(err) || ctx.Err() != nil {
			break
		}
		metrics.ReactionConflicts.Inc()
		logger.WarnWithFields("Reaction toggle conflict", err,
			logger.WithUserID(userID), logger.WithPostID(postID), zap.Int("attempt", attempt+1))
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPostNotFound
		case errors.Is(err, ErrInvalidReaction):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case repository.IsConflict(err):
			return nil, fmt.Errorf("%w: %w", ErrStorageFailure, ErrStorageConflict)
		default:
			logger.ErrorWithFields("Reaction toggle failed", err,
				logger.WithUserID(userID), logger.WithPostID(postID))
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	metrics.ReactionToggles.WithLabelValues(transition).Inc()
	return result, nil
}

func (s *reactionService) toggleOnce(ctx context.Context, userID, postID int64, kind models.ReactionKind) (*ReactionResult, string, error) {
	var (
		result     ReactionResult
		transition string
	)

	err := s.reactionRepo.WithinTx(ctx, func(tx repository.ReactionTx) error {
		if err := tx.LockPost(ctx, postID); err != nil {
			return err
		}

		existing, err := tx.GetReaction(ctx, userID, postID)
		if err != nil {
			return err
		}

		var likeDelta, dislikeDelta int
		switch {
		case existing == nil:
			if err := tx.InsertReaction(ctx, userID, postID, kind); err != nil {
				return err
			}
			if likeDelta, dislikeDelta, err = counterDelta(kind, 1); err != nil {
				return err
			}
			transition = transitionAdded
		case existing.Kind == kind:
			if err := tx.DeleteReaction(ctx, userID, postID); err != nil {
				return err
			}
			if likeDelta, dislikeDelta, err = counterDelta(kind, -1); err != nil {
				return err
			}
			transition = transitionRemoved
		default:
			if err := tx.UpdateReactionKind(ctx, userID, postID, kind); err != nil {
				return err
			}
			oldLike, oldDislike, err := counterDelta(existing.Kind, -1)
			if err != nil {
				return err
			}
			newLike, newDislike, err := counterDelta(kind, 1)
			if err != nil {
				return err
			}
			likeDelta, dislikeDelta = oldLike+newLike, oldDislike+newDislike
			transition = transitionSwitched
		}

		likes, dislikes, err := tx.AdjustCounters(ctx, postID, likeDelta, dislikeDelta)
		if err != nil {
			return err
		}

		result = ReactionResult{Likes: likes, Dislikes: dislikes}
		if transition != transitionRemoved {
			result.UserLiked = kind == models.ReactionLike
			result.UserDisliked = kind == models.ReactionDislike
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return &result, transition, nil
}

// State is a read-only view of the counters and the caller's own reaction.
func (s *reactionService) State(ctx context.Context, userID, postID int64) (*ReactionResult, error) {
	likes, dislikes, err := s.reactionRepo.GetCounts(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	result := &ReactionResult{Likes: likes, Dislikes: dislikes}
	if userID <= 0 {
		return result, nil
	}

	reaction, err := s.reactionRepo.GetUserReaction(ctx, userID, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if reaction != nil {
		result.UserLiked = reaction.Kind == models.ReactionLike
		result.UserDisliked = reaction.Kind == models.ReactionDislike
	}

	return result, nil
}
