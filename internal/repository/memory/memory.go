// Package memory provides in-memory repository implementations used by
// tests. Documents are deep-copied on the way in and out so callers
// cannot mutate stored state through shared slices.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[primitive.ObjectID]domain.Profile // keyed by owner
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[primitive.ObjectID]domain.Profile)}
}

func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID.IsZero() {
		profile.ID = primitive.NewObjectID()
	}
	r.profiles[profile.User] = copyProfile(*profile)
	return nil
}

func (r *ProfileRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := copyProfile(profile)
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profiles := make([]domain.Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		profiles = append(profiles, copyProfile(profile))
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Date.After(profiles[j].Date)
	})
	return profiles, nil
}

func (r *ProfileRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

type PostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]domain.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[primitive.ObjectID]domain.Post)}
}

func (r *PostRepository) Save(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	r.posts[post.ID] = copyPost(*post)
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := copyPost(post)
	return &p, nil
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := make([]domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, copyPost(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
	return posts, nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *PostRepository) DeleteByAuthor(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, post := range r.posts {
		if post.User == userID {
			delete(r.posts, id)
		}
	}
	return nil
}

func copyProfile(p domain.Profile) domain.Profile {
	p.Skills = append([]string(nil), p.Skills...)
	p.Experience = append([]domain.Experience(nil), p.Experience...)
	p.Education = append([]domain.Education(nil), p.Education...)
	return p
}

func copyPost(p domain.Post) domain.Post {
	p.Likes = append([]domain.Like(nil), p.Likes...)
	p.Comments = append([]domain.Comment(nil), p.Comments...)
	return p
}
