package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"ssipfix/internal/logger"
	"ssipfix/internal/metrics"
	"ssipfix/internal/models"
	"ssipfix/internal/storage"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/xid"
	"go.uber.org/zap"
)

const (
	MaxPhotoBytes = 5 * 1024 * 1024
	MaxVideoBytes = 20 * 1024 * 1024
)

type mediaRule struct {
	dir        string
	maxBytes   int
	extensions map[string]struct{}
	typeMsg    string
	mimePrefix []string
}

var mediaRules = map[models.MediaCategory]mediaRule{
	models.MediaPhoto: {
		dir:      "photos",
		maxBytes: MaxPhotoBytes,
		extensions: map[string]struct{}{
			"jpg": {}, "jpeg": {}, "png": {}, "gif": {},
		},
		typeMsg:    "only JPG, JPEG, PNG & GIF files are allowed",
		mimePrefix: []string{"image/"},
	},
	models.MediaVideo: {
		dir:      "videos",
		maxBytes: MaxVideoBytes,
		extensions: map[string]struct{}{
			"mp4": {}, "webm": {}, "ogg": {},
		},
		typeMsg:    "only MP4, WEBM & OGG files are allowed",
		mimePrefix: []string{"video/", "audio/ogg", "application/ogg"},
	},
}

// MediaUpload is one file as received from the client.
type MediaUpload struct {
	Data     []byte
	Filename string
	Category models.MediaCategory
}

type MediaService interface {
	Validate(ctx context.Context, data []byte, filename string, category models.MediaCategory) (*models.MediaAsset, error)
	Discard(ctx context.Context, asset *models.MediaAsset)
}

type mediaService struct {
	storage storage.Storage
}

func NewMediaService(storage storage.Storage) MediaService {
	return &mediaService{storage: storage}
}

func rejectMedia(category models.MediaCategory, reason RejectionReason, msg string) *RejectionError {
	metrics.MediaUploads.WithLabelValues(string(category), string(reason)).Inc()
	return &RejectionError{Reason: reason, Message: msg}
}

// Validate accepts a file by its declared extension and size only, then stores it under a
// generated name. The sniffed content type is logged but never used to reject.
func (s *mediaService) Validate(ctx context.Context, data []byte, filename string, category models.MediaCategory) (*models.MediaAsset, error) {
	rule, ok := mediaRules[category]
	if !ok {
		return nil, rejectMedia(category, RejectUnsupportedType, "unsupported media category")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := rule.extensions[ext]; !ok {
		return nil, rejectMedia(category, RejectUnsupportedType, rule.typeMsg)
	}

	if len(data) > rule.maxBytes {
		return nil, rejectMedia(category, RejectTooLarge,
			fmt.Sprintf("file exceeds the %d MB limit", rule.maxBytes/(1024*1024)))
	}

	detected := mimetype.Detect(data)
	if !hasAnyPrefix(detected.String(), rule.mimePrefix) {
		logger.Log.Warn("Uploaded content does not match its extension",
			zap.String("extension", ext),
			zap.String("detected", detected.String()),
			zap.String("category", string(category)),
		)
	}

	objectPath := path.Join(rule.dir, xid.New().String()+"."+ext)
	if err := s.storage.Save(ctx, objectPath, data, detected.String()); err != nil {
		metrics.MediaUploads.WithLabelValues(string(category), "error").Inc()
		logger.ErrorWithFields("Failed to store media", err, zap.String("path", objectPath))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	metrics.MediaUploads.WithLabelValues(string(category), "accepted").Inc()
	logger.Log.Info("Media stored",
		zap.String("path", objectPath),
		zap.String("size", humanize.IBytes(uint64(len(data)))),
		zap.String("detected", detected.String()),
	)

	return &models.MediaAsset{
		Path:         objectPath,
		Category:     category,
		SizeBytes:    int64(len(data)),
		Extension:    ext,
		DetectedMIME: detected.String(),
	}, nil
}

// Discard removes a stored asset whose owning record could not be saved.
func (s *mediaService) Discard(ctx context.Context, asset *models.MediaAsset) {
	if asset == nil {
		return
	}
	if err := s.storage.Delete(ctx, asset.Path); err != nil {
		logger.WarnWithFields("Failed to discard orphaned media", err, zap.String("path", asset.Path))
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
