package storage

import (
	"context"
	"io"
)

// Service stores user avatar images in remote object storage and
// returns a publicly addressable URL for each upload.
type Service interface {
	UploadAvatar(ctx context.Context, userID, contentType string, body io.Reader) (string, error)
	DeleteAvatar(ctx context.Context, userID string) error
}
