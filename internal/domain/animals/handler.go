package animals

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/middleware"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, habSvc *habitats.Service) {
	r.Route("/animals", func(ar chi.Router) {
		// Público
		ar.Get("/", listAnimalsHandler(svc, habSvc))
		ar.Get("/{animalID}", getAnimalHandler(svc, habSvc))

		// Staff
		ar.With(middleware.RequireStaff).Post("/", createAnimalHandler(svc, habSvc))
		ar.With(middleware.RequireStaff).Put("/{animalID}", updateAnimalHandler(svc, habSvc))
		ar.With(middleware.RequireStaff).Delete("/{animalID}", deleteAnimalHandler(svc))
	})
}

type createAnimalRequest struct {
	Name                string   `json:"name"`
	Species             string   `json:"species"`
	Breed               string   `json:"breed"`
	Age                 *int     `json:"age"`
	Gender              string   `json:"gender"`
	WeightKg            *float64 `json:"weight_kg"`
	Color               string   `json:"color"`
	ArrivalDate         string   `json:"arrival_date"` // YYYY-MM-DD opcional (default hoy)
	Source              string   `json:"source"`
	AdoptionStatus      string   `json:"adoption_status"`
	AdoptionFee         *float64 `json:"adoption_fee"`
	HabitatID           *int64   `json:"habitat_id"`
	DietaryRequirements string   `json:"dietary_requirements"`
	BehavioralNotes     string   `json:"behavioral_notes"`
	SpecialNeeds        string   `json:"special_needs"`
	MicrochipNumber     string   `json:"microchip_number"`
}

// habitat_id: ausente = no tocar, null = sacar del hábitat.
type updateAnimalRequest struct {
	Name                *string    `json:"name"`
	Species             *string    `json:"species"`
	Breed               *string    `json:"breed"`
	Age                 *int       `json:"age"`
	Gender              *string    `json:"gender"`
	WeightKg            *float64   `json:"weight_kg"`
	Color               *string    `json:"color"`
	ArrivalDate         *string    `json:"arrival_date"`
	Source              *string    `json:"source"`
	AdoptionStatus      *string    `json:"adoption_status"`
	AdoptionFee         *float64   `json:"adoption_fee"`
	HabitatID           OptionalID `json:"habitat_id" swaggertype:"integer"`
	DietaryRequirements *string    `json:"dietary_requirements"`
	BehavioralNotes     *string    `json:"behavioral_notes"`
	SpecialNeeds        *string    `json:"special_needs"`
	MicrochipNumber     *string    `json:"microchip_number"`
}

type animalResponse struct {
	ID                  int64     `json:"animal_id"`
	Name                string    `json:"name"`
	Species             string    `json:"species"`
	Breed               string    `json:"breed"`
	Age                 int       `json:"age"`
	WeightKg            *float64  `json:"weight_kg,omitempty"`
	Gender              Gender    `json:"gender"`
	Color               string    `json:"color,omitempty"`
	ArrivalDate         string    `json:"arrival_date"`
	DaysInSanctuary     int       `json:"days_in_sanctuary"`
	Source              string    `json:"source,omitempty"`
	AdoptionStatus      Status    `json:"adoption_status"`
	AdoptionFee         float64   `json:"adoption_fee"`
	HabitatID           *int64    `json:"habitat_id"`
	HabitatName         string    `json:"habitat_name,omitempty"`
	DietaryRequirements string    `json:"dietary_requirements,omitempty"`
	BehavioralNotes     string    `json:"behavioral_notes,omitempty"`
	SpecialNeeds        string    `json:"special_needs,omitempty"`
	MicrochipNumber     string    `json:"microchip_number,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

const dateLayout = "2006-01-02"

// @Summary Registrar animal
// @Description Ingreso de un animal. Si trae habitat_id, el hábitat debe tener lugar: la ocupación se incrementa en la misma transacción. Solo staff.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createAnimalRequest true "Datos del animal; arrival_date YYYY-MM-DD"
// @Success 201 {object} respond.Envelope{data=animalResponse}
// @Failure 400 {object} respond.Envelope "validación / hábitat inválido / hábitat lleno"
// @Failure 401 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope "microchip duplicado"
// @Router /animals [post]
func createAnimalHandler(svc *Service, habSvc *habitats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAnimalRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		var arrival *time.Time
		if strings.TrimSpace(req.ArrivalDate) != "" {
			t, err := time.Parse(dateLayout, req.ArrivalDate)
			if err != nil {
				respond.Fail(w, http.StatusBadRequest, "arrival_date must be YYYY-MM-DD")
				return
			}
			arrival = &t
		}

		a, err := svc.Create(r.Context(), middleware.ActorFrom(r), CreateInput{
			Name:                req.Name,
			Species:             req.Species,
			Breed:               req.Breed,
			Age:                 req.Age,
			Gender:              req.Gender,
			WeightKg:            req.WeightKg,
			Color:               req.Color,
			ArrivalDate:         arrival,
			Source:              req.Source,
			AdoptionStatus:      req.AdoptionStatus,
			AdoptionFee:         req.AdoptionFee,
			HabitatID:           req.HabitatID,
			DietaryRequirements: req.DietaryRequirements,
			BehavioralNotes:     req.BehavioralNotes,
			SpecialNeeds:        req.SpecialNeeds,
			MicrochipNumber:     req.MicrochipNumber,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.Message(w, http.StatusCreated, toAnimalResponse(a, habitatNames(r, habSvc), time.Now()), "animal created")
	}
}

// @Summary Listar animales
// @Description Listado público paginado. Nunca incluye animales retirados. sort fuera del allow-list cae a name.
// @Tags animals
// @Produce json
// @Param status query string false "Available | Pending | Adopted | Not Available | Medical Hold"
// @Param species query string false "Especie (case-insensitive)"
// @Param habitat query int false "ID de hábitat"
// @Param available_only query bool false "Solo Available"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 20, máx 100)"
// @Param sort query string false "name | species | age | arrivalDate | adoptionStatus"
// @Param order query string false "asc | desc"
// @Success 200 {object} respond.Envelope{data=[]animalResponse}
// @Failure 400 {object} respond.Envelope
// @Router /animals [get]
func listAnimalsHandler(svc *Service, habSvc *habitats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := pagination.FromQuery(q)

		var habitatID *int64
		if v := strings.TrimSpace(q.Get("habitat")); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				respond.Fail(w, http.StatusBadRequest, "habitat must be a positive integer")
				return
			}
			habitatID = &id
		}

		availableOnly := false
		if v := strings.TrimSpace(q.Get("available_only")); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				respond.Fail(w, http.StatusBadRequest, "available_only must be true or false")
				return
			}
			availableOnly = b
		}

		items, total, err := svc.List(r.Context(), ListInput{
			Status:        q.Get("status"),
			Species:       q.Get("species"),
			HabitatID:     habitatID,
			AvailableOnly: availableOnly,
			Sort:          q.Get("sort"),
			Order:         q.Get("order"),
			Page:          page,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		names := habitatNames(r, habSvc)
		now := time.Now()
		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a, names, now))
		}
		respond.Page(w, out, pagination.NewMeta(page, total))
	}
}

// @Summary Obtener animal
// @Tags animals
// @Produce json
// @Param animalID path int true "ID del animal"
// @Success 200 {object} respond.Envelope{data=animalResponse}
// @Failure 404 {object} respond.Envelope "no existe o está retirado"
// @Router /animals/{animalID} [get]
func getAnimalHandler(svc *Service, habSvc *habitats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "animalID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid animal id")
			return
		}

		a, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAnimalResponse(a, habitatNames(r, habSvc), time.Now()))
	}
}

// @Summary Actualizar animal
// @Description Update parcial. habitat_id distinto mueve al animal (con control de capacidad); habitat_id null lo saca del hábitat. adoption_status nunca puede pasar a Adopted por acá. Solo staff.
// @Tags animals
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Param payload body updateAnimalRequest true "Campos a cambiar"
// @Success 200 {object} respond.Envelope{data=animalResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /animals/{animalID} [put]
func updateAnimalHandler(svc *Service, habSvc *habitats.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "animalID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid animal id")
			return
		}

		var req updateAnimalRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		var arrival *time.Time
		if req.ArrivalDate != nil {
			t, err := time.Parse(dateLayout, *req.ArrivalDate)
			if err != nil {
				respond.Fail(w, http.StatusBadRequest, "arrival_date must be YYYY-MM-DD")
				return
			}
			arrival = &t
		}

		updated, err := svc.Update(r.Context(), middleware.ActorFrom(r), id, UpdateInput{
			Name:                req.Name,
			Species:             req.Species,
			Breed:               req.Breed,
			Age:                 req.Age,
			Gender:              req.Gender,
			WeightKg:            req.WeightKg,
			Color:               req.Color,
			ArrivalDate:         arrival,
			Source:              req.Source,
			AdoptionStatus:      req.AdoptionStatus,
			AdoptionFee:         req.AdoptionFee,
			HabitatID:           req.HabitatID,
			DietaryRequirements: req.DietaryRequirements,
			BehavioralNotes:     req.BehavioralNotes,
			SpecialNeeds:        req.SpecialNeeds,
			MicrochipNumber:     req.MicrochipNumber,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		respond.Message(w, http.StatusOK, toAnimalResponse(updated, habitatNames(r, habSvc), time.Now()), "animal updated")
	}
}

// @Summary Retirar animal
// @Description Soft delete: el animal deja de aparecer en listados y lookups. Solo staff. 409 si tiene solicitudes abiertas.
// @Tags animals
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path int true "ID del animal"
// @Success 200 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /animals/{animalID} [delete]
func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "animalID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid animal id")
			return
		}

		if err := svc.SoftDelete(r.Context(), middleware.ActorFrom(r), id); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.Message(w, http.StatusOK, map[string]int64{"animal_id": id}, "animal deleted")
	}
}

// habitatNames es best-effort: si falla, la respuesta sale sin habitat_name.
func habitatNames(r *http.Request, habSvc *habitats.Service) map[int64]string {
	items, err := habSvc.List(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Warn("habitat names unavailable", map[string]any{"err": err})
		return nil
	}
	out := make(map[int64]string, len(items))
	for _, h := range items {
		out[h.ID] = h.Name
	}
	return out
}

func toAnimalResponse(a Animal, habitatNames map[int64]string, now time.Time) animalResponse {
	out := animalResponse{
		ID:                  a.ID,
		Name:                a.Name,
		Species:             a.Species,
		Breed:               a.Breed,
		Age:                 a.Age,
		WeightKg:            a.WeightKg,
		Gender:              a.Gender,
		Color:               a.Color,
		ArrivalDate:         a.ArrivalDate.Format(dateLayout),
		DaysInSanctuary:     a.DaysInSanctuary(now),
		Source:              a.Source,
		AdoptionStatus:      a.AdoptionStatus,
		AdoptionFee:         a.AdoptionFee,
		HabitatID:           a.HabitatID,
		DietaryRequirements: a.DietaryRequirements,
		BehavioralNotes:     a.BehavioralNotes,
		SpecialNeeds:        a.SpecialNeeds,
		MicrochipNumber:     a.MicrochipNumber,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
	if a.HabitatID != nil {
		out.HabitatName = habitatNames[*a.HabitatID]
	}
	return out
}

func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
