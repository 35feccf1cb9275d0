package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animal-sanctuary/internal/adapters/auth/jwt"
	"animal-sanctuary/internal/adapters/auth/remote"
	mem "animal-sanctuary/internal/adapters/storage/memory"
	pg "animal-sanctuary/internal/adapters/storage/postgres"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/platform/config"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/metrics"
	"animal-sanctuary/internal/ports/auth"
	"animal-sanctuary/internal/router"
)

// @title Animal Sanctuary API
// @version 1.0
// @description Registro de animales, hábitats, adoptantes y solicitudes de adopción.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid configuration", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	defer func() { _ = log.Sync() }()

	started := time.Now()

	// DB_DSN vacío => in-memory (modo dev)
	var store router.Store
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN, cfg.DBMaxOpenConns)
		if err != nil {
			log.Error("failed to open database", map[string]any{"err": err})
			os.Exit(1)
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			err := pg.Migrate(ctx, db, log)
			cancel()
			if err != nil {
				log.Error("failed to migrate database", map[string]any{"err": err})
				os.Exit(1)
			}
		}
		store = pg.NewStore(db)
		log.Info("using postgres store", nil)
	} else {
		store = mem.NewStore()
		log.Warn("DB_DSN not set, using in-memory store", nil)
	}

	var verifier auth.AuthVerifier
	switch {
	case cfg.AuthVerifyURL != "":
		v, err := remote.NewVerifier(remote.Config{VerifyURL: cfg.AuthVerifyURL, APIKey: cfg.AuthAPIKey})
		if err != nil {
			log.Error("failed to configure identity service", map[string]any{"err": err})
			os.Exit(1)
		}
		verifier = v
	case cfg.JWTSecret != "":
		verifier = jwt.NewVerifier(cfg.JWTSecret)
	default:
		log.Warn("no auth configured, dev mode: X-Debug-User-ID grants staff", nil)
	}

	m := metrics.New()
	rec := audit.NewRecorder(store.Audit(), log, audit.WithMetrics(m), audit.WithTimeout(cfg.AuditTimeout))

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier:           verifier,
			Store:                  store,
			Logger:                 log,
			Metrics:                m,
			Recorder:               rec,
			ReleaseHabitatOnRetire: cfg.ReleaseHabitatOnRetire,
			Started:                started,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"err": err})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", map[string]any{"err": err})
	}
	// Después del server: no entran más requests que generen entradas.
	if err := rec.Close(ctx); err != nil {
		log.Error("activity log writes still pending", map[string]any{"err": err})
	}
	log.Info("server exited", nil)
}
