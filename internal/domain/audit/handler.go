package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-sanctuary/internal/middleware"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.With(middleware.RequireStaff).Get("/activity", listActivityHandler(svc))
}

type entryResponse struct {
	ID        int64           `json:"log_id"`
	EventID   string          `json:"event_id"`
	TableName string          `json:"table_name"`
	RecordID  int64           `json:"record_id"`
	Action    string          `json:"action"`
	ActorType string          `json:"actor_type"`
	ActorID   string          `json:"actor_id,omitempty"`
	Origin    string          `json:"origin,omitempty"`
	Before    json.RawMessage `json:"before,omitempty" swaggertype:"object"`
	After     json.RawMessage `json:"after,omitempty" swaggertype:"object"`
	Timestamp time.Time       `json:"timestamp"`
}

// @Summary Listar activity log
// @Description Entradas del activity log, más recientes primero. Solo staff.
// @Tags activity
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param table query string false "animals | adopters | adoption_applications"
// @Param record_id query int false "ID del registro"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 20, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]entryResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Router /activity [get]
func listActivityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := pagination.FromQuery(q)

		var recordID int64
		if v := strings.TrimSpace(q.Get("record_id")); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				respond.Fail(w, http.StatusBadRequest, "record_id must be a positive integer")
				return
			}
			recordID = id
		}

		items, total, err := svc.List(r.Context(), ListInput{
			Table:    q.Get("table"),
			RecordID: recordID,
			Page:     page,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		respond.Page(w, out, pagination.NewMeta(page, total))
	}
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:        e.ID,
		EventID:   e.EventID,
		TableName: string(e.TableName),
		RecordID:  e.RecordID,
		Action:    string(e.Action),
		ActorType: string(e.ActorType),
		ActorID:   e.ActorID,
		Origin:    e.Origin,
		Before:    e.Before,
		After:     e.After,
		Timestamp: e.Timestamp,
	}
}
