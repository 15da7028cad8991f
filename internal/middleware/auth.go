package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pluur/backend/pkg/jwks"
)

const userIDKey = "userID"

// Auth requires a valid bearer token and stores the caller's user ID in
// the request context.
func Auth(validator *jwks.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := validateBearer(c, validator)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			c.Abort()
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth stores the user ID when a valid token is present and lets
// anonymous requests through. Handlers decide what anonymity may do.
func OptionalAuth(validator *jwks.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := validateBearer(c, validator); ok {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

func validateBearer(c *gin.Context, validator *jwks.Validator) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	userID, err := validator.Validate(token)
	if err != nil {
		return "", false
	}
	return userID, true
}

// UserID returns the authenticated caller's ID, or "" for anonymous
// requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
