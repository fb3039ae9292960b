package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/auth"
	"devconnector/internal/github"
	"devconnector/internal/metrics"
	"devconnector/internal/repository/memory"
	"devconnector/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := memory.NewUserRepository()
	profiles := memory.NewProfileRepository()
	posts := memory.NewPostRepository()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	handler := NewHandler(
		service.NewUserService(users, profiles, posts, issuer, logger),
		service.NewProfileService(profiles, users, logger),
		service.NewPostService(posts, users, logger),
		github.NewClient(nil, ""),
		nil,
		issuer,
		metrics.NewCollector(),
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.HeaderToken, token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router *gin.Engine, name, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, "Jane", "jane@example.com")

	t.Run("current user omits password", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "jane@example.com")
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
			"name": "Jane Again", "email": "jane@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("validation errors carry field detail", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
			"name": "", "email": "nope", "password": "x",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"errors"`)
		assert.Contains(t, rec.Body.String(), `"field"`)
	})

	t.Run("login", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
			"email": "jane@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "token")
	})

	t.Run("bad login is uniform", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth", "", gin.H{
			"email": "jane@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "msg")
	})

	t.Run("protected route without token", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProfileRoutes(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Jane", "jane@example.com")

	t.Run("no profile yet", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/profile/me", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create profile", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/profile", token, gin.H{
			"status": "Developer", "skills": "Go,MongoDB",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"skills":["Go","MongoDB"]`)
	})

	t.Run("experience add and remove", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/profile/experience", token, gin.H{
			"title": "Engineer", "company": "Acme", "from": "2020-01-01",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var profile struct {
			Experience []struct {
				ID string `json:"id"`
			} `json:"experience"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
		require.Len(t, profile.Experience, 1)

		rec = doJSON(t, router, http.MethodDelete, "/api/profile/experience/"+profile.Experience[0].ID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"experience":[]`)
	})

	t.Run("profiles are public", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/profile", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"owner"`)
	})

	t.Run("profile by malformed user id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/profile/user/not-an-id", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPostRoutes(t *testing.T) {
	router := newTestRouter(t)
	janeToken := registerUser(t, router, "Jane", "jane@example.com")
	bobToken := registerUser(t, router, "Bob", "bob@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/posts", janeToken, gin.H{"text": "hello world"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var post struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	t.Run("posts require auth", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/posts", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("like then duplicate like", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPut, "/api/posts/like/"+post.ID, bobToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPut, "/api/posts/like/"+post.ID, bobToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("comment lifecycle", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/posts/comment/"+post.ID, bobToken, gin.H{"text": "nice"})
		require.Equal(t, http.StatusOK, rec.Code)

		var comments []struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
		require.Len(t, comments, 1)

		// Jane cannot remove Bob's comment
		rec = doJSON(t, router, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+comments[0].ID, janeToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = doJSON(t, router, http.MethodDelete, "/api/posts/comment/"+post.ID+"/"+comments[0].ID, bobToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete by non-owner", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/posts/"+post.ID, bobToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed post id maps to not found", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/posts/not-an-id", janeToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devconnector_http_requests_total")
}
