package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lostboitest/casemanage/internal/auth"
	"github.com/lostboitest/casemanage/internal/config"
	"github.com/lostboitest/casemanage/internal/domain/user"
	"github.com/lostboitest/casemanage/internal/http/middlewares"
	"github.com/lostboitest/casemanage/internal/observability"
	"github.com/lostboitest/casemanage/internal/security"
	"github.com/lostboitest/casemanage/internal/session"
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type AuthHandler struct {
	users    UserStore
	tokens   *auth.Manager
	sessions session.Store
	prom     *observability.Prom
	cfg      config.Config
}

func NewAuthHandler(users UserStore, tokens *auth.Manager, sessions session.Store, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		prom:     prom,
		cfg:      cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rctx := ctx.Request.Context()

	foundUser, err := h.users.GetByUsername(rctx, req.Username)

	if err != nil {
		// an unknown username is a rejection; a broken store is not
		if errors.Is(err, user.ErrNotFound) {
			h.countLogin("rejected")
			RespondUnAuthorized(ctx, "Username or password is incorrect")
			return
		}

		h.countLogin("error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.countLogin("rejected")
		RespondUnAuthorized(ctx, "Username or password is incorrect")
		return
	}

	sess := session.New(foundUser.ID, foundUser.Username, h.cfg.SessionTTL())

	err = h.sessions.Put(rctx, sess)

	if err != nil {
		h.countLogin("error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	token, err := h.tokens.GenerateSessionToken(sess.ID, foundUser.ID, foundUser.Username)

	if err != nil {
		h.countLogin("error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token, sess.ExpiresAt)
	h.countLogin("ok")

	ctx.JSON(http.StatusOK, foundUser)
}

// Logout revokes the server-side session and clears the cookie. Always 204,
// even without a valid cookie.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(auth.SessionCookie)

	if err == nil && raw != "" {
		claims, err := h.tokens.VerifySessionToken(raw)

		if err == nil {
			_ = h.sessions.Delete(ctx.Request.Context(), claims.JTI)
		}
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// CurrentUser runs behind RequireAuth.
func (h *AuthHandler) CurrentUser(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "Unauthorized")
		return
	}

	u, err := h.users.GetByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "Unauthorized")
			return
		}

		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) countLogin(result string) {
	if h.prom != nil {
		h.prom.LoginsTotal.WithLabelValues(result).Inc()
	}
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		auth.SessionCookie,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		auth.SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
