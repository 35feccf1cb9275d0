package health

import (
	"context"
	"net/http"
	"time"

	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/respond"
)

type Stats struct {
	TotalAnimals        int `json:"total_animals"`
	AvailableAnimals    int `json:"available_animals"`
	TotalAdopters       int `json:"total_adopters"`
	PendingApplications int `json:"pending_applications"`
	TotalHabitats       int `json:"total_habitats"`
}

// Checker lo implementan los stores (memory/postgres).
type Checker interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

type databaseStatus struct {
	Connected bool   `json:"connected"`
	Stats     *Stats `json:"stats,omitempty"`
}

type Report struct {
	Status        string         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Database      databaseStatus `json:"database"`
}

const checkTimeout = 3 * time.Second

// Handler responde 200 si el store responde al ping, 503 si no.
// Si solo fallan los conteos, el servicio sigue "healthy" sin stats.
//
// @Summary Health check
// @Description Conectividad con el store y conteos resumidos.
// @Tags health
// @Produce json
// @Success 200 {object} respond.Envelope
// @Failure 503 {object} respond.Envelope
// @Router /health [get]
func Handler(c Checker, started time.Time, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		ts := now().UTC()
		rep := Report{
			Status:        "healthy",
			Timestamp:     ts,
			UptimeSeconds: int64(ts.Sub(started).Seconds()),
		}

		if err := c.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("health ping failed", map[string]any{"err": err})
			rep.Status = "unhealthy"
			respondUnhealthy(w, rep)
			return
		}
		rep.Database.Connected = true

		st, err := c.Stats(ctx)
		if err != nil {
			logger.FromContext(r.Context()).Warn("health stats failed", map[string]any{"err": err})
		} else {
			rep.Database.Stats = &st
		}

		respond.JSON(w, http.StatusOK, rep)
	}
}

func respondUnhealthy(w http.ResponseWriter, rep Report) {
	respond.Write(w, http.StatusServiceUnavailable, respond.Envelope{
		Success: false,
		Data:    rep,
		Error:   "database unavailable",
	})
}
