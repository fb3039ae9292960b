package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnector/internal/domain"
)

// ErrNotFound is returned by any repository when the requested document
// does not exist. Services translate it into their own taxonomy.
var ErrNotFound = errors.New("document not found")

// UserRepository defines persistence operations for User documents.
// Save is an upsert-by-id full-document replace.
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
