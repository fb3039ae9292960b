package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"devconnector/internal/apperr"
	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

// PostService covers post CRUD and the like/comment embedded-list
// mutations.
type PostService interface {
	Create(ctx context.Context, authorID primitive.ObjectID, text string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	Delete(ctx context.Context, id, requesterID primitive.ObjectID) error
	Like(ctx context.Context, postID, userID primitive.ObjectID) ([]domain.Like, error)
	Unlike(ctx context.Context, postID, userID primitive.ObjectID) ([]domain.Like, error)
	AddComment(ctx context.Context, postID, authorID primitive.ObjectID, text string) ([]domain.Comment, error)
	RemoveComment(ctx context.Context, postID, requesterID, commentID primitive.ObjectID) ([]domain.Comment, error)
}

type postService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *logrus.Logger
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger *logrus.Logger) PostService {
	return &postService{
		posts:  posts,
		users:  users,
		logger: logger,
	}
}

func (s *postService) Create(ctx context.Context, authorID primitive.ObjectID, text string) (*domain.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "text", Message: "text is required"})
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("load author", err)
	}

	// author name and avatar are copied here and never re-synced
	post := &domain.Post{
		User:     authorID,
		Text:     text,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []domain.Like{},
		Comments: []domain.Comment{},
		Date:     time.Now().UTC(),
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, apperr.Internal("save post", err)
	}
	s.logger.WithFields(logrus.Fields{"post": post.ID.Hex(), "user": authorID.Hex()}).Info("post created")
	return post, nil
}

func (s *postService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list posts", err)
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal("load post", err)
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id, requesterID primitive.ObjectID) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.User != requesterID {
		return apperr.Forbidden("user not authorized to delete this post")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return apperr.Internal("delete post", err)
	}
	s.logger.WithField("post", id.Hex()).Info("post deleted")
	return nil
}

func (s *postService) Like(ctx context.Context, postID, userID primitive.ObjectID) ([]domain.Like, error) {
	post, err := s.mutate(ctx, postID, func(post *domain.Post) error {
		entry := domain.Like{ID: primitive.NewObjectID(), User: userID}
		updated, err := addEntry(post.Likes, entry, func(likes []domain.Like) error {
			for _, like := range likes {
				if like.User == userID {
					return apperr.AlreadyExists("post already liked")
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		post.Likes = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

func (s *postService) Unlike(ctx context.Context, postID, userID primitive.ObjectID) ([]domain.Like, error) {
	post, err := s.mutate(ctx, postID, func(post *domain.Post) error {
		updated, ok, err := removeEntry(post.Likes,
			func(like domain.Like) bool { return like.User == userID },
			nil,
		)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.FailedPrecondition("post has not yet been liked")
		}
		post.Likes = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Likes, nil
}

func (s *postService) AddComment(ctx context.Context, postID, authorID primitive.ObjectID, text string) ([]domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "text", Message: "text is required"})
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("load author", err)
	}

	post, err := s.mutate(ctx, postID, func(post *domain.Post) error {
		entry := domain.Comment{
			ID:     primitive.NewObjectID(),
			User:   authorID,
			Text:   text,
			Name:   author.Name,
			Avatar: author.Avatar,
			Date:   time.Now().UTC(),
		}
		updated, err := addEntry(post.Comments, entry, nil)
		if err != nil {
			return err
		}
		post.Comments = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

func (s *postService) RemoveComment(ctx context.Context, postID, requesterID, commentID primitive.ObjectID) ([]domain.Comment, error) {
	post, err := s.mutate(ctx, postID, func(post *domain.Post) error {
		updated, ok, err := removeEntry(post.Comments,
			func(comment domain.Comment) bool { return comment.ID == commentID },
			func(comment domain.Comment) error {
				if comment.User != requesterID {
					return apperr.Forbidden("user not authorized to delete this comment")
				}
				return nil
			},
		)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("comment not found")
		}
		post.Comments = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// mutate loads a post, applies fn and persists the whole document. Two
// concurrent mutations against the same post can race (last write
// wins); see the concurrency notes in DESIGN.md.
func (s *postService) mutate(ctx context.Context, postID primitive.ObjectID, fn func(*domain.Post) error) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, apperr.Internal("load post", err)
	}

	if err := fn(post); err != nil {
		return nil, err
	}

	if err := s.posts.Save(ctx, post); err != nil {
		return nil, apperr.Internal("save post", err)
	}
	return post, nil
}
