// Package http wires the REST surface to the domain services.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"devconnector/internal/apperr"
	"devconnector/internal/auth"
	"devconnector/internal/github"
	"devconnector/internal/metrics"
	"devconnector/internal/service"
	"devconnector/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	profiles service.ProfileService
	posts    service.PostService
	github   *github.Client
	storage  storage.Service
	issuer   *auth.TokenIssuer
	metrics  *metrics.Collector
	logger   *logrus.Logger
}

func NewHandler(
	users service.UserService,
	profiles service.ProfileService,
	posts service.PostService,
	githubClient *github.Client,
	store storage.Service,
	issuer *auth.TokenIssuer,
	collector *metrics.Collector,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:    users,
		profiles: profiles,
		posts:    posts,
		github:   githubClient,
		storage:  store,
		issuer:   issuer,
		metrics:  collector,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(h.requestLogger())
	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
		router.GET("/metrics", h.metrics.Handler())
	}

	requireAuth := auth.RequireAuth(h.issuer, h.logger)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/users", h.register)
		api.PUT("/users/avatar", requireAuth, h.uploadAvatar)

		api.POST("/auth", h.login)
		api.GET("/auth", requireAuth, h.currentUser)

		profile := api.Group("/profile")
		{
			profile.GET("", h.listProfiles)
			profile.POST("", requireAuth, h.upsertProfile)
			profile.DELETE("", requireAuth, h.deleteAccount)
			profile.GET("/me", requireAuth, h.myProfile)
			profile.GET("/user/:user_id", h.profileByUser)
			profile.PUT("/experience", requireAuth, h.addExperience)
			profile.DELETE("/experience/:exp_id", requireAuth, h.removeExperience)
			profile.PUT("/education", requireAuth, h.addEducation)
			profile.DELETE("/education/:edu_id", requireAuth, h.removeEducation)
			profile.GET("/github/:username", h.githubRepos)
		}

		posts := api.Group("/posts", requireAuth)
		{
			posts.POST("", h.createPost)
			posts.GET("", h.listPosts)
			posts.GET("/:id", h.getPost)
			posts.DELETE("/:id", h.deletePost)
			posts.PUT("/like/:id", h.likePost)
			posts.PUT("/unlike/:id", h.unlikePost)
			posts.POST("/comment/:id", h.addComment)
			posts.DELETE("/comment/:id/:comment_id", h.removeComment)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+auth.HeaderToken)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-Id", requestID)
		start := time.Now()

		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	}
}

// respondError maps the application error taxonomy to HTTP statuses.
// Unexpected errors are logged with their cause and surfaced as a
// generic 500 so internals never reach the caller.
func (h *Handler) respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		h.logger.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal server error"})
		return
	}

	switch appErr.Code {
	case apperr.CodeInvalidArgument, apperr.CodeFailedPrecondition:
		if len(appErr.Fields) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": appErr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"msg": appErr.Message})
	case apperr.CodeUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"msg": appErr.Message})
	case apperr.CodePermissionDenied:
		c.JSON(http.StatusForbidden, gin.H{"msg": appErr.Message})
	case apperr.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"msg": appErr.Message})
	case apperr.CodeAlreadyExists:
		c.JSON(http.StatusConflict, gin.H{"msg": appErr.Message})
	default:
		h.logger.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal server error"})
	}
}
