package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newGateRouter(issuer *TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	router.GET("/protected", RequireAuth(issuer, logger), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c).Hex()})
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	userID := primitive.NewObjectID()
	router := newGateRouter(issuer)

	valid, err := issuer.Issue(userID)
	require.NoError(t, err)

	expiredIssuer := NewTokenIssuer("test-secret", -time.Minute)
	expired, err := expiredIssuer.Issue(userID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", token: "garbage", wantStatus: http.StatusUnauthorized},
		{name: "expired token", token: expired, wantStatus: http.StatusUnauthorized},
		{name: "valid token", token: valid, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.token != "" {
				req.Header.Set(HeaderToken, tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "msg")
			} else {
				assert.Contains(t, rec.Body.String(), userID.Hex())
			}
		})
	}
}

func TestUserID_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, primitive.NilObjectID, UserID(c))
}
