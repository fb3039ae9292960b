package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devconnector/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request body"})
		return
	}

	_, token, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request body"})
		return
	}

	token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// maxAvatarSize bounds avatar uploads to 2 MiB.
const maxAvatarSize = 2 << 20

func (h *Handler) uploadAvatar(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "avatar storage is not configured"})
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "avatar file is required"})
		return
	}
	defer file.Close()

	if header.Size > maxAvatarSize {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "avatar must be at most 2MB"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/png" && contentType != "image/jpeg" && contentType != "image/gif" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "avatar must be a png, jpeg or gif image"})
		return
	}

	userID := auth.UserID(c)
	url, err := h.storage.UploadAvatar(c.Request.Context(), userID.Hex(), contentType, file)
	if err != nil {
		h.logger.WithError(err).Error("avatar upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "internal server error"})
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), userID, url)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
