package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lostboitest/casemanage/internal/auth"
	"github.com/lostboitest/casemanage/internal/session"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type SessionAuth struct {
	tokens   TokenVerifier
	sessions session.Store
}

func NewSessionAuth(tokens TokenVerifier, sessions session.Store) *SessionAuth {
	return &SessionAuth{
		tokens:   tokens,
		sessions: sessions,
	}
}

// RequireAuth gates the case-mutating routes. The cookie signature is checked
// first, then the session row itself: a logout or an expired row means 401
// even when the cookie still verifies.
func (m *SessionAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(auth.SessionCookie)

		if err != nil || raw == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := m.tokens.VerifySessionToken(raw)

		if err != nil {
			abortUnauthorized(c)
			return
		}

		sess, err := m.sessions.Get(c.Request.Context(), claims.JTI)

		if err != nil {
			abortUnauthorized(c)
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			abortUnauthorized(c)
			return
		}

		// the token subject must match the session row it points at
		tokenUserID, err := claims.UserID()

		if err != nil || tokenUserID != sess.UserID {
			abortUnauthorized(c)
			return
		}

		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxUsername, sess.Username)
		c.Set(CtxSessionID, sess.ID)

		c.Next()
	}
}

// API clients get JSON, plain browser navigation gets a readable message.
func abortUnauthorized(c *gin.Context) {
	accept := c.GetHeader("Accept")

	if strings.Contains(accept, "application/json") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized",
		})
		return
	}

	c.String(http.StatusUnauthorized, "You must be logged in to access this page")
	c.Abort()
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func UsernameFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUsername)
	if !ok {
		return "", false
	}
	name, ok := v.(string)
	return name, ok
}
