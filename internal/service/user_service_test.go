package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/apperr"
	"devconnector/internal/auth"
	"devconnector/internal/repository/memory"
)

type fixtures struct {
	users    *memory.UserRepository
	profiles *memory.ProfileRepository
	posts    *memory.PostRepository
	issuer   *auth.TokenIssuer
	userSvc  UserService
	profSvc  ProfileService
	postSvc  PostService
}

func newFixtures(t *testing.T) *fixtures {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := memory.NewUserRepository()
	profiles := memory.NewProfileRepository()
	posts := memory.NewPostRepository()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	return &fixtures{
		users:    users,
		profiles: profiles,
		posts:    posts,
		issuer:   issuer,
		userSvc:  NewUserService(users, profiles, posts, issuer, logger),
		profSvc:  NewProfileService(profiles, users, logger),
		postSvc:  NewPostService(posts, users, logger),
	}
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		f := newFixtures(t)

		user, token, err := f.userSvc.Register(ctx, "Jane Doe", "jane@example.com", "secret123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.False(t, user.ID.IsZero())
		assert.Equal(t, "jane@example.com", user.Email)
		assert.Contains(t, user.Avatar, "gravatar.com/avatar/")
		assert.NotEqual(t, "secret123", user.PasswordHash)

		// the returned token authenticates as the new user
		got, err := f.issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		f := newFixtures(t)

		_, _, err := f.userSvc.Register(ctx, "Jane", "jane@example.com", "secret123")
		require.NoError(t, err)

		_, _, err = f.userSvc.Register(ctx, "Other Jane", "Jane@Example.com", "different1")
		assert.Equal(t, apperr.CodeAlreadyExists, apperr.CodeOf(err))
	})

	t.Run("validation failures carry field detail", func(t *testing.T) {
		f := newFixtures(t)

		_, _, err := f.userSvc.Register(ctx, "", "not-an-email", "short")
		require.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))

		fields := apperr.FieldsOf(err)
		require.Len(t, fields, 3)
		names := []string{fields[0].Field, fields[1].Field, fields[2].Field}
		assert.ElementsMatch(t, []string{"name", "email", "password"}, names)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	user, _, err := f.userSvc.Register(ctx, "Jane", "jane@example.com", "secret123")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		token, err := f.userSvc.Login(ctx, "jane@example.com", "secret123")
		require.NoError(t, err)

		got, err := f.issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got)
	})

	t.Run("wrong password is uniform", func(t *testing.T) {
		_, err := f.userSvc.Login(ctx, "jane@example.com", "wrong-pass")
		assert.Equal(t, apperr.CodeUnauthenticated, apperr.CodeOf(err))
	})

	t.Run("unknown email is uniform", func(t *testing.T) {
		_, err := f.userSvc.Login(ctx, "nobody@example.com", "secret123")
		assert.Equal(t, apperr.CodeUnauthenticated, apperr.CodeOf(err))
	})
}

func TestUserService_DeleteAccount_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixtures(t)

	user, _, err := f.userSvc.Register(ctx, "Jane", "jane@example.com", "secret123")
	require.NoError(t, err)
	other, _, err := f.userSvc.Register(ctx, "Bob", "bob@example.com", "secret123")
	require.NoError(t, err)

	_, err = f.profSvc.Upsert(ctx, user.ID, ProfileInput{Status: "Developer", Skills: "Go"})
	require.NoError(t, err)
	_, err = f.postSvc.Create(ctx, user.ID, "first post")
	require.NoError(t, err)
	otherPost, err := f.postSvc.Create(ctx, other.ID, "bob's post")
	require.NoError(t, err)
	_, err = f.postSvc.AddComment(ctx, otherPost.ID, user.ID, "nice post")
	require.NoError(t, err)

	require.NoError(t, f.userSvc.DeleteAccount(ctx, user.ID))

	_, err = f.userSvc.Get(ctx, user.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	_, err = f.profSvc.GetByUser(ctx, user.ID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	posts, err := f.postSvc.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, other.ID, posts[0].User)

	// comments left on other users' posts stay behind
	remaining, err := f.postSvc.Get(ctx, otherPost.ID)
	require.NoError(t, err)
	require.Len(t, remaining.Comments, 1)
	assert.Equal(t, user.ID, remaining.Comments[0].User)
}
