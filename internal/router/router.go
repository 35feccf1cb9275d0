package router

import (
	"net/http"
	"time"

	_ "animal-sanctuary/docs"
	mem "animal-sanctuary/internal/adapters/storage/memory"
	"animal-sanctuary/internal/domain/adopters"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/domain/applications"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/middleware"
	"animal-sanctuary/internal/platform/health"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/metrics"
	"animal-sanctuary/internal/ports/auth"
	"animal-sanctuary/internal/ports/tx"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Store lo implementan memory.Store y postgres.Store.
type Store interface {
	tx.Transactor
	health.Checker

	Habitats() habitats.Repository
	Animals() animals.Repository
	Adopters() adopters.Repository
	Applications() applications.Repository
	Audit() audit.Repository
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si no viene, in-memory.
	Store Store

	Logger  logger.Logger
	Metrics *metrics.Metrics

	// Si no viene, se arma un AsyncRecorder sobre Store.Audit().
	Recorder audit.Recorder

	ReleaseHabitatOnRetire bool
	Started                time.Time
}

func NewRouter(opts Options) http.Handler {
	store := opts.Store
	if store == nil {
		store = mem.NewStore()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	rec := opts.Recorder
	if rec == nil {
		rec = audit.NewRecorder(store.Audit(), log, audit.WithMetrics(m))
	}
	started := opts.Started
	if started.IsZero() {
		started = time.Now()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log, m))
	r.Use(middleware.Recover)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", health.Handler(store, started, nil))
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Services por módulo
	habSvc := habitats.NewService(store.Habitats(), m)
	animalsSvc := animals.NewService(store.Animals(), habSvc, store, rec, animals.Options{
		ReleaseHabitatOnRetire: opts.ReleaseHabitatOnRetire,
	})
	adoptersSvc := adopters.NewService(store.Adopters(), store, rec)
	appsSvc := applications.NewService(store.Applications(), animalsSvc, adoptersSvc, store, rec, m)
	auditSvc := audit.NewService(store.Audit())

	// Rutas por módulo
	habitats.RegisterRoutes(r, habSvc)
	animals.RegisterRoutes(r, animalsSvc, habSvc)
	adopters.RegisterRoutes(r, adoptersSvc, appsSvc)
	applications.RegisterRoutes(r, appsSvc)
	audit.RegisterRoutes(r, auditSvc)

	return r
}
