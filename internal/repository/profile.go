package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnector/internal/domain"
)

// ProfileRepository defines persistence operations for Profile documents.
// At most one profile exists per owning user.
type ProfileRepository interface {
	Save(ctx context.Context, profile *domain.Profile) error
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}
