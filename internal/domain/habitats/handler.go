package habitats

import (
	"net/http"
	"strconv"
	"time"

	"animal-sanctuary/internal/middleware"
	"animal-sanctuary/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Habitats (solo staff)
	r.Route("/habitats", func(hr chi.Router) {
		hr.Use(middleware.RequireStaff)

		hr.Get("/", listHabitatsHandler(svc))
		hr.Post("/", createHabitatHandler(svc))
		hr.Get("/{habitatID}", getHabitatHandler(svc))
	})
}

type createHabitatRequest struct {
	Name             string `json:"habitat_name"`
	Type             string `json:"habitat_type"`
	Capacity         int    `json:"capacity"`
	TemperatureRange string `json:"temperature_range"`
	SpecialFeatures  string `json:"special_features"`
}

type habitatResponse struct {
	ID               int64     `json:"habitat_id"`
	Name             string    `json:"habitat_name"`
	Type             Type      `json:"habitat_type"`
	Capacity         int       `json:"capacity"`
	CurrentOccupancy int       `json:"current_occupancy"`
	AvailableSpots   int       `json:"available_spots"`
	TemperatureRange string    `json:"temperature_range,omitempty"`
	SpecialFeatures  string    `json:"special_features,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// @Summary Crear hábitat
// @Description Crea un hábitat con ocupación 0. La ocupación nunca la setea el cliente.
// @Tags habitats
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createHabitatRequest true "Datos del hábitat"
// @Success 201 {object} respond.Envelope{data=habitatResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Router /habitats [post]
func createHabitatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createHabitatRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		h, err := svc.Create(r.Context(), CreateInput{
			Name:             req.Name,
			Type:             req.Type,
			Capacity:         req.Capacity,
			TemperatureRange: req.TemperatureRange,
			SpecialFeatures:  req.SpecialFeatures,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.Message(w, http.StatusCreated, toHabitatResponse(h), "habitat created")
	}
}

// @Summary Listar hábitats
// @Tags habitats
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} respond.Envelope{data=[]habitatResponse}
// @Failure 401 {object} respond.Envelope
// @Router /habitats [get]
func listHabitatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out := make([]habitatResponse, 0, len(items))
		for _, h := range items {
			out = append(out, toHabitatResponse(h))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// @Summary Obtener hábitat
// @Tags habitats
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param habitatID path int true "ID del hábitat"
// @Success 200 {object} respond.Envelope{data=habitatResponse}
// @Failure 404 {object} respond.Envelope
// @Router /habitats/{habitatID} [get]
func getHabitatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "habitatID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid habitat id")
			return
		}

		h, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toHabitatResponse(h))
	}
}

func toHabitatResponse(h Habitat) habitatResponse {
	return habitatResponse{
		ID:               h.ID,
		Name:             h.Name,
		Type:             h.Type,
		Capacity:         h.Capacity,
		CurrentOccupancy: h.CurrentOccupancy,
		AvailableSpots:   h.Capacity - h.CurrentOccupancy,
		TemperatureRange: h.TemperatureRange,
		SpecialFeatures:  h.SpecialFeatures,
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
