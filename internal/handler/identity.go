package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Caller identity is supplied by the external Identity Resolver via trusted
// headers; the messaging core only requires a non-empty id.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"

	ctxUserIDKey   = "userId"
	ctxUserNameKey = "userName"
)

// RequireIdentity extracts the caller's identity into the request context
// and rejects requests without one.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "caller identity is required",
			})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Set(ctxUserNameKey, strings.TrimSpace(c.GetHeader(HeaderUserName)))
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}

func callerName(c *gin.Context) string {
	return c.GetString(ctxUserNameKey)
}
