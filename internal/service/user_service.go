package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"devconnector/internal/apperr"
	"devconnector/internal/auth"
	"devconnector/internal/domain"
	"devconnector/internal/gravatar"
	"devconnector/internal/repository"
)

// UserService covers the account lifecycle: registration, login, lookup
// and cascading deletion.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (string, error)
	Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (*domain.User, error)
	DeleteAccount(ctx context.Context, id primitive.ObjectID) error
}

type userService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	issuer   *auth.TokenIssuer
	logger   *logrus.Logger
}

func NewUserService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	issuer *auth.TokenIssuer,
	logger *logrus.Logger,
) UserService {
	return &userService{
		users:    users,
		profiles: profiles,
		posts:    posts,
		issuer:   issuer,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	var fields []apperr.FieldError
	if name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "name is required"})
	}
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "a valid email is required"})
	}
	if len(password) < 6 {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "password should contain at least 6 characters"})
	}
	if len(fields) > 0 {
		return nil, "", apperr.Validation(fields...)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", apperr.AlreadyExists("this email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", apperr.Internal("look up email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal("hash password", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       gravatar.URL(email),
		Date:         time.Now().UTC(),
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, "", apperr.Internal("save user", err)
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, "", apperr.Internal("issue token", err)
	}

	s.logger.WithFields(logrus.Fields{"user": user.ID.Hex(), "email": email}).Info("user registered")
	return user, token, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", apperr.Unauthorized("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.Unauthorized("invalid credentials")
		}
		return "", apperr.Internal("look up email", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Unauthorized("invalid credentials")
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", apperr.Internal("issue token", err)
	}

	s.logger.WithField("user", user.ID.Hex()).Info("user logged in")
	return token, nil
}

func (s *userService) Get(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("load user", err)
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Avatar = avatarURL
	if err := s.users.Save(ctx, user); err != nil {
		return nil, apperr.Internal("save user", err)
	}
	return user, nil
}

// DeleteAccount removes the user's posts, profile and account, in that
// order. Likes and comments left on other users' posts stay behind.
func (s *userService) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	if err := s.posts.DeleteByAuthor(ctx, id); err != nil {
		return apperr.Internal("delete posts", err)
	}
	if err := s.profiles.DeleteByUser(ctx, id); err != nil {
		return apperr.Internal("delete profile", err)
	}
	if err := s.users.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal("delete user", err)
	}
	s.logger.WithField("user", id.Hex()).Info("account deleted")
	return nil
}
