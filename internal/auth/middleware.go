package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Context keys for authenticated request data
const (
	ContextKeyUserID    = "auth_user_id"
	ContextKeySessionID = "auth_session_id"
)

// Middleware authenticates requests from the access-token cookie.
type Middleware struct {
	tokens *TokenService
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(tokens *TokenService) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handler returns a Gin handler that rejects unauthenticated requests.
// An expired token and a malformed one are both 401, but the message differs
// so clients know whether a refresh is worth attempting.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, err := c.Cookie(AccessTokenCookie)
		if err != nil || accessToken == "" {
			abortUnauthorized(c, ErrInvalidToken)
			return
		}

		claims, err := m.tokens.VerifyAccess(accessToken)
		if err != nil {
			var appErr *Error
			if errors.As(err, &appErr) {
				abortUnauthorized(c, appErr)
			} else {
				abortUnauthorized(c, ErrInvalidToken)
			}
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeySessionID, claims.SessionID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, appErr *Error) {
	c.AbortWithStatusJSON(appErr.Status, gin.H{"message": appErr.Message, "errorCode": appErr.Code})
}

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns 0 when the request was not authenticated.
func GetUserID(c *gin.Context) uint {
	if v, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetSessionID extracts the session ID from the Gin context.
func GetSessionID(c *gin.Context) string {
	if v, exists := c.Get(ContextKeySessionID); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
