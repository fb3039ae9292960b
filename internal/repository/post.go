package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnector/internal/domain"
)

// PostRepository defines persistence operations for Post documents.
// List returns posts newest-first.
type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByAuthor(ctx context.Context, userID primitive.ObjectID) error
}
