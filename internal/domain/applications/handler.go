package applications

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-sanctuary/internal/domain/adopters"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/middleware"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/applications", func(ar chi.Router) {
		// Formulario público
		ar.Post("/", submitApplicationHandler(svc))

		ar.Group(func(sr chi.Router) {
			sr.Use(middleware.RequireStaff)
			sr.Get("/", listApplicationsHandler(svc))
			sr.Get("/{applicationID}", getApplicationHandler(svc))
			sr.Put("/{applicationID}", updateApplicationHandler(svc))
			sr.Put("/{applicationID}/status", updateStatusHandler(svc))
		})
	})
}

type submitRequest struct {
	AdopterID int64             `json:"adopter_id"`
	Adopter   *adopters.Request `json:"adopter"`
	AnimalID  int64             `json:"animal_id"`

	ReasonForAdoption     string   `json:"reason_for_adoption"`
	LivingArrangement     string   `json:"living_arrangement"`
	References            string   `json:"references"`
	WorkSchedule          string   `json:"work_schedule"`
	PlanForPetCare        string   `json:"plan_for_pet_care"`
	PreferredAdoptionDate string   `json:"preferred_adoption_date"` // YYYY-MM-DD opcional
	MonthlyBudget         *float64 `json:"monthly_budget"`
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type detailsRequest struct {
	StaffNotes    *string `json:"staff_notes"`
	InterviewDate *string `json:"interview_date"` // YYYY-MM-DD
}

type applicationResponse struct {
	ID                    int64    `json:"application_id"`
	AdopterID             int64    `json:"adopter_id"`
	AnimalID              int64    `json:"animal_id"`
	AdopterName           string   `json:"adopter_name,omitempty"`
	AdopterEmail          string   `json:"adopter_email,omitempty"`
	AnimalName            string   `json:"animal_name,omitempty"`
	AnimalSpecies         string   `json:"animal_species,omitempty"`
	AnimalBreed           string   `json:"animal_breed,omitempty"`
	ApplicationDate       string   `json:"application_date"`
	Status                Status   `json:"status"`
	ReasonForAdoption     string   `json:"reason_for_adoption,omitempty"`
	LivingArrangement     string   `json:"living_arrangement,omitempty"`
	References            string   `json:"references,omitempty"`
	WorkSchedule          string   `json:"work_schedule,omitempty"`
	PlanForPetCare        string   `json:"plan_for_pet_care,omitempty"`
	PreferredAdoptionDate string   `json:"preferred_adoption_date,omitempty"`
	MonthlyBudget         *float64 `json:"monthly_budget,omitempty"`
	InterviewDate         string   `json:"interview_date,omitempty"`
	StaffNotes            string   `json:"staff_notes,omitempty"`
	ApprovalDate          string   `json:"approval_date,omitempty"`
	RejectionReason       string   `json:"rejection_reason,omitempty"`
	NextStatuses          []Status `json:"next_statuses"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// @Summary Enviar solicitud de adopción
// @Description Formulario público. Acepta adopter_id o un adoptante inline ("adopter"), que se crea en la misma transacción. El animal debe estar Available y sin otra solicitud activa.
// @Tags applications
// @Accept json
// @Produce json
// @Param payload body submitRequest true "Solicitud"
// @Success 201 {object} respond.Envelope{data=applicationResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /applications [post]
func submitApplicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := SubmitInput{
			AdopterID:         req.AdopterID,
			AnimalID:          req.AnimalID,
			ReasonForAdoption: req.ReasonForAdoption,
			LivingArrangement: req.LivingArrangement,
			References:        req.References,
			WorkSchedule:      req.WorkSchedule,
			PlanForPetCare:    req.PlanForPetCare,
			MonthlyBudget:     req.MonthlyBudget,
		}
		if req.Adopter != nil {
			a, err := req.Adopter.ToCreateInput()
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			in.Adopter = &a
		}
		d, err := parseDay(req.PreferredAdoptionDate, "preferred_adoption_date")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		in.PreferredAdoptionDate = d

		app, err := svc.Submit(r.Context(), middleware.ActorFrom(r), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.Message(w, http.StatusCreated, toApplicationResponse(svc, app, relatedRecords(r, svc, app)), "application submitted")
	}
}

// @Summary Listar solicitudes
// @Description Más nuevas primero. Solo staff.
// @Tags applications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param status query string false "Submitted | Under Review | Interview Scheduled | Approved | Rejected | Withdrawn"
// @Param adopter_id query int false "Filtrar por adoptante"
// @Param animal_id query int false "Filtrar por animal"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 20, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]applicationResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 401 {object} respond.Envelope
// @Router /applications [get]
func listApplicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := pagination.FromQuery(q)

		in := ListInput{Status: q.Get("status"), Page: page}
		var ok bool
		if in.AdopterID, ok = queryID(q.Get("adopter_id")); !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid adopter_id")
			return
		}
		if in.AnimalID, ok = queryID(q.Get("animal_id")); !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid animal_id")
			return
		}

		items, total, err := svc.List(r.Context(), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		rel := relatedRecords(r, svc, items...)
		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toApplicationResponse(svc, a, rel))
		}
		respond.Page(w, out, pagination.NewMeta(page, total))
	}
}

// @Summary Obtener solicitud
// @Tags applications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param applicationID path int true "ID de la solicitud"
// @Success 200 {object} respond.Envelope{data=applicationResponse}
// @Failure 404 {object} respond.Envelope
// @Router /applications/{applicationID} [get]
func getApplicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "applicationID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid application id")
			return
		}

		app, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, toApplicationResponse(svc, app, relatedRecords(r, svc, app)))
	}
}

// @Summary Editar solicitud
// @Description staff_notes se puede editar siempre; interview_date solo mientras la solicitud está abierta.
// @Tags applications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param applicationID path int true "ID de la solicitud"
// @Param payload body detailsRequest true "Campos a cambiar"
// @Success 200 {object} respond.Envelope{data=applicationResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /applications/{applicationID} [put]
func updateApplicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "applicationID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid application id")
			return
		}

		var req detailsRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := DetailsInput{StaffNotes: req.StaffNotes}
		if req.InterviewDate != nil {
			d, err := parseDay(*req.InterviewDate, "interview_date")
			if err != nil {
				respond.Error(w, r, err)
				return
			}
			in.InterviewDate = d
		}

		app, err := svc.UpdateDetails(r.Context(), middleware.ActorFrom(r), id, in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.Message(w, http.StatusOK, toApplicationResponse(svc, app, relatedRecords(r, svc, app)), "application updated")
	}
}

// @Summary Cambiar estado de la solicitud
// @Description Valida contra la tabla de transiciones. Rejected requiere reason. Approved marca el animal como Adopted y rechaza las demás solicitudes activas del animal.
// @Tags applications
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param applicationID path int true "ID de la solicitud"
// @Param payload body statusRequest true "Nuevo estado"
// @Success 200 {object} respond.Envelope{data=applicationResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Failure 409 {object} respond.Envelope
// @Router /applications/{applicationID}/status [put]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "applicationID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid application id")
			return
		}

		var req statusRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		app, err := svc.UpdateStatus(r.Context(), middleware.ActorFrom(r), id, StatusInput{
			Status: req.Status,
			Reason: req.Reason,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.Message(w, http.StatusOK, toApplicationResponse(svc, app, relatedRecords(r, svc, app)), "application status updated")
	}
}

// related son el adoptante y el animal de cada solicitud, para no obligar al cliente
// a un request extra por fila.
type related struct {
	adopters map[int64]adopters.Adopter
	animals  map[int64]animals.Animal
}

// relatedRecords es best-effort: un animal retirado o una lectura fallida dejan los campos vacíos.
func relatedRecords(r *http.Request, svc *Service, apps ...Application) related {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	rel := related{
		adopters: make(map[int64]adopters.Adopter, len(apps)),
		animals:  make(map[int64]animals.Animal, len(apps)),
	}
	for _, a := range apps {
		if _, seen := rel.adopters[a.AdopterID]; !seen {
			ad, err := svc.adopters.GetByID(ctx, a.AdopterID)
			if err != nil {
				log.Warn("adopter lookup failed", map[string]any{"adopter_id": a.AdopterID, "err": err})
				ad = adopters.Adopter{}
			}
			rel.adopters[a.AdopterID] = ad
		}
		if _, seen := rel.animals[a.AnimalID]; !seen {
			an, err := svc.animals.GetByID(ctx, a.AnimalID)
			if err != nil {
				// Un animal retirado responde ErrNotFound: no es una falla.
				if !errors.Is(err, animals.ErrNotFound) {
					log.Warn("animal lookup failed", map[string]any{"animal_id": a.AnimalID, "err": err})
				}
				an = animals.Animal{}
			}
			rel.animals[a.AnimalID] = an
		}
	}
	return rel
}

func toApplicationResponse(svc *Service, a Application, rel related) applicationResponse {
	next := svc.machine.Next(a.Status)
	ad := rel.adopters[a.AdopterID]
	an := rel.animals[a.AnimalID]
	return applicationResponse{
		ID:                    a.ID,
		AdopterID:             a.AdopterID,
		AnimalID:              a.AnimalID,
		AdopterName:           strings.TrimSpace(ad.FullName()),
		AdopterEmail:          ad.Email,
		AnimalName:            an.Name,
		AnimalSpecies:         an.Species,
		AnimalBreed:           an.Breed,
		ApplicationDate:       a.ApplicationDate.Format("2006-01-02"),
		Status:                a.Status,
		ReasonForAdoption:     a.ReasonForAdoption,
		LivingArrangement:     a.LivingArrangement,
		References:            a.References,
		WorkSchedule:          a.WorkSchedule,
		PlanForPetCare:        a.PlanForPetCare,
		PreferredAdoptionDate: formatDay(a.PreferredAdoptionDate),
		MonthlyBudget:         a.MonthlyBudget,
		InterviewDate:         formatDay(a.InterviewDate),
		StaffNotes:            a.StaffNotes,
		ApprovalDate:          formatDay(a.ApprovalDate),
		RejectionReason:       a.RejectionReason,
		NextStatuses:          next,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

func parseDay(s, field string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Wrapf(ErrInvalidInput, "%s must be YYYY-MM-DD", field)
	}
	return &t, nil
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func queryID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
