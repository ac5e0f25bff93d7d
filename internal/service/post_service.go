package service

import (
	"context"
	"errors"
	"fmt"
	"ssipfix/internal/models"
	"ssipfix/internal/repository"
	"strings"
)

type PostView struct {
	Post      *models.Post     `json:"post"`
	Comments  []models.Comment `json:"comments"`
	Reactions *ReactionResult  `json:"-"`
}

type PostService interface {
	CreatePost(ctx context.Context, userID int64, content string, media *MediaUpload) (*models.Post, error)
	GetPost(ctx context.Context, viewerID, postID int64) (*PostView, error)
	ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error)
	AddComment(ctx context.Context, userID, postID int64, content string, photo *MediaUpload) (*models.Comment, error)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	media       MediaService
	reactions   ReactionService
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, media MediaService, reactions ReactionService) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		media:       media,
		reactions:   reactions,
	}
}

func (p *postService) CreatePost(ctx context.Context, userID int64, content string, media *MediaUpload) (*models.Post, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	content = strings.TrimSpace(content)
	if content == "" && media == nil {
		return nil, fmt.Errorf("%w: post needs content or media", ErrInvalidInput)
	}

	post := &models.Post{
		UserID:  userID,
		Content: content,
	}

	var asset *models.MediaAsset
	if media != nil {
		var err error
		asset, err = p.media.Validate(ctx, media.Data, media.Filename, media.Category)
		if err != nil {
			return nil, err
		}
		mediaType := string(asset.Category)
		post.MediaPath = &asset.Path
		post.MediaType = &mediaType
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		p.media.Discard(ctx, asset)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return post, nil
}

func (p *postService) GetPost(ctx context.Context, viewerID, postID int64) (*PostView, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	comments, err := p.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	state, err := p.reactions.State(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}

	return &PostView{Post: post, Comments: comments, Reactions: state}, nil
}

func (p *postService) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	posts, err := p.postRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return posts, nil
}

// AddComment attaches a comment with an optional photo. Comments never carry video.
func (p *postService) AddComment(ctx context.Context, userID, postID int64, content string, photo *MediaUpload) (*models.Comment, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrInvalidInput)
	}

	if _, err := p.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}

	var asset *models.MediaAsset
	if photo != nil {
		var err error
		asset, err = p.media.Validate(ctx, photo.Data, photo.Filename, models.MediaPhoto)
		if err != nil {
			return nil, err
		}
		comment.MediaPath = &asset.Path
	}

	if err := p.commentRepo.Create(ctx, comment); err != nil {
		p.media.Discard(ctx, asset)
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return comment, nil
}
