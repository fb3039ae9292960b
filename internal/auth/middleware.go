package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HeaderToken is the request header carrying the identity token.
const HeaderToken = "x-auth-token"

const contextUserKey = "auth.userID"

// RequireAuth gates protected routes. It is a pure function of the
// incoming token: a missing or invalid token short-circuits with a
// uniform 401 body, a valid one attaches the caller's user id to the
// request context.
func RequireAuth(issuer *TokenIssuer, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(HeaderToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "no token, authorization denied"})
			return
		}

		userID, err := issuer.Verify(token)
		if err != nil {
			logger.WithField("path", c.FullPath()).Debug("token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "token is not valid"})
			return
		}

		c.Set(contextUserKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated caller's id attached by RequireAuth.
// It is the nil ObjectID on unauthenticated requests.
func UserID(c *gin.Context) primitive.ObjectID {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return primitive.NilObjectID
	}
	id, ok := value.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID
	}
	return id
}
