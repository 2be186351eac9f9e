package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lostboitest/casemanage/internal/auth"
	"github.com/lostboitest/casemanage/internal/config"
	"github.com/lostboitest/casemanage/internal/http/handlers"
	"github.com/lostboitest/casemanage/internal/http/middlewares"
	"github.com/lostboitest/casemanage/internal/observability"
	"github.com/lostboitest/casemanage/internal/session"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is the explicit service wiring: everything is constructed once at
// process start and handed in, no package-level singletons.
type Deps struct {
	Cfg      config.Config
	Cases    handlers.CasesStore
	Users    handlers.UserStore
	Sessions session.Store
	Tokens   *auth.Manager
	Prom     *observability.Prom
	Ping     func(ctx context.Context) error
}

func NewRouter(log *slog.Logger, d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("casemanage"))

	if len(d.Cfg.CORSOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	}

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up handlers
	casesHandler := handlers.NewCasesHandler(d.Cases)
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Sessions, d.Prom, d.Cfg)
	sessionAuth := middlewares.NewSessionAuth(d.Tokens, d.Sessions)

	// unauthenticated routes get a per-IP limit; there is no identity to
	// key on yet
	searchLimiter := middlewares.NewRateLimiter(60, time.Minute)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	// public case lookup
	api.GET("/cases/search", searchLimiter.RateLimiterMiddleware(middlewares.KeyByIP), casesHandler.Search)

	// auth
	api.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	api.POST("/logout", authHandler.Logout)

	// protected admin routes
	protected := api.Group("")
	protected.Use(sessionAuth.RequireAuth())

	protected.GET("/user", authHandler.CurrentUser)
	protected.GET("/cases", casesHandler.ListCases)
	protected.POST("/cases", casesHandler.CreateCase)
	protected.PATCH("/cases/:id", casesHandler.UpdateCase)
	protected.DELETE("/cases/:id", casesHandler.DeleteCase)

	return r
}
