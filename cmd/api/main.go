package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lostboitest/casemanage/internal/auth"
	"github.com/lostboitest/casemanage/internal/config"
	"github.com/lostboitest/casemanage/internal/db"
	httpx "github.com/lostboitest/casemanage/internal/http"
	"github.com/lostboitest/casemanage/internal/observability"
	"github.com/lostboitest/casemanage/internal/repo/postgres"
	"github.com/lostboitest/casemanage/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL must be set; refusing to start")
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DatabaseURL)

	if err != nil {
		log.Error("could not connect to database", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	startCtx, cancelStart := config.WithTimeout(15 * time.Second)

	err = db.EnsureSchema(startCtx, pool)

	if err != nil {
		cancelStart()
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	err = db.EnsureAdminUser(startCtx, pool, cfg)

	cancelStart()

	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	// metrics

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// tracing is opt-in

	if cfg.OTelEndpoint != "" {
		ctx, cancel := config.WithTimeout(5 * time.Second)
		shutdownTracer, err := observability.InitTracer(ctx, "casemanage", cfg.OTelEndpoint)
		cancel()

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	// session store: redis when configured, in-process otherwise

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()

	var sessions session.Store

	if cfg.RedisAddr != "" {
		redisStore := session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(3 * time.Second)
		err = redisStore.Ping(pingCtx)
		cancel()

		if err != nil {
			log.Error("could not connect to redis", "err", err)
			os.Exit(1)
		}

		defer redisStore.Close()

		sessions = redisStore
	} else {
		memStore := session.NewMemoryStore()
		memStore.StartSweeper(sweepCtx, time.Hour)
		sessions = memStore
	}

	tokens := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL())

	ping := func(ctx context.Context) error {
		return pool.Ping(ctx)
	}

	router := httpx.NewRouter(log, httpx.Deps{
		Cfg:      cfg,
		Cases:    postgres.NewCasesRepo(pool, prom),
		Users:    postgres.NewUsersRepo(pool, prom),
		Sessions: sessions,
		Tokens:   tokens,
		Prom:     prom,
		Ping:     ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
