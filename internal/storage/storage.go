package storage

import (
	"context"
	"errors"
)

var ErrObjectExists = errors.New("object already exists")

// Storage persists accepted media under slash-separated object paths such as
// "photos/<id>.png".
type Storage interface {
	Save(ctx context.Context, objectPath string, data []byte, contentType string) error
	Delete(ctx context.Context, objectPath string) error
}
