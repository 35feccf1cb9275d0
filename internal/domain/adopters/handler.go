package adopters

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"animal-sanctuary/internal/middleware"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

var errDateOfBirth = apperr.Wrapf(ErrInvalidInput, "date_of_birth must be YYYY-MM-DD")

// ApplicationSummary es la vista de una solicitud dentro del detalle del adoptante.
type ApplicationSummary struct {
	ApplicationID   int64     `json:"application_id"`
	AnimalID        int64     `json:"animal_id"`
	Status          string    `json:"status"`
	ApplicationDate time.Time `json:"application_date"`
}

// ApplicationsLookup lo implementa el módulo de solicitudes.
type ApplicationsLookup interface {
	SummariesForAdopter(ctx context.Context, adopterID int64) ([]ApplicationSummary, error)
}

func RegisterRoutes(r chi.Router, svc *Service, apps ApplicationsLookup) {
	r.Route("/adopters", func(ar chi.Router) {
		// Formulario público
		ar.Post("/", createAdopterHandler(svc))

		// Staff
		ar.With(middleware.RequireStaff).Get("/", listAdoptersHandler(svc))
		ar.With(middleware.RequireStaff).Get("/{adopterID}", getAdopterHandler(svc, apps))
		ar.With(middleware.RequireStaff).Put("/{adopterID}", updateAdopterHandler(svc))
	})
}

// Request es el formulario de adoptante; también viaja inline en POST /applications.
type Request struct {
	FirstName             string      `json:"first_name"`
	LastName              string      `json:"last_name"`
	Email                 string      `json:"email"`
	Phone                 string      `json:"phone"`
	Address               string      `json:"address"`
	City                  string      `json:"city"`
	State                 string      `json:"state"`
	ZipCode               string      `json:"zip_code"`
	DateOfBirth           string      `json:"date_of_birth"` // YYYY-MM-DD opcional
	Occupation            string      `json:"occupation"`
	HousingType           string      `json:"housing_type"`
	HousingOwned          *bool       `json:"housing_owned"`
	HasYard               *bool       `json:"has_yard"`
	YardFenced            *bool       `json:"yard_fenced"`
	HasOtherPets          *bool       `json:"has_other_pets"`
	OtherPetsDetails      string      `json:"other_pets_details"`
	PreviousPetExperience string      `json:"previous_pet_experience"`
	References            []Reference `json:"references"`
	Notes                 string      `json:"notes"`
}

type updateAdopterRequest struct {
	FirstName             *string      `json:"first_name"`
	LastName              *string      `json:"last_name"`
	Email                 *string      `json:"email"`
	Phone                 *string      `json:"phone"`
	Address               *string      `json:"address"`
	City                  *string      `json:"city"`
	State                 *string      `json:"state"`
	ZipCode               *string      `json:"zip_code"`
	Occupation            *string      `json:"occupation"`
	HousingType           *string      `json:"housing_type"`
	HousingOwned          *bool        `json:"housing_owned"`
	HasYard               *bool        `json:"has_yard"`
	YardFenced            *bool        `json:"yard_fenced"`
	HasOtherPets          *bool        `json:"has_other_pets"`
	OtherPetsDetails      *string      `json:"other_pets_details"`
	PreviousPetExperience *string      `json:"previous_pet_experience"`
	References            *[]Reference `json:"references"`
	Notes                 *string      `json:"notes"`
}

type adopterResponse struct {
	ID                    int64                `json:"adopter_id"`
	FirstName             string               `json:"first_name"`
	LastName              string               `json:"last_name"`
	Email                 string               `json:"email"`
	Phone                 string               `json:"phone"`
	Address               string               `json:"address,omitempty"`
	City                  string               `json:"city,omitempty"`
	State                 string               `json:"state,omitempty"`
	ZipCode               string               `json:"zip_code,omitempty"`
	DateOfBirth           string               `json:"date_of_birth,omitempty"`
	Occupation            string               `json:"occupation,omitempty"`
	HousingType           string               `json:"housing_type,omitempty"`
	HousingOwned          *bool                `json:"housing_owned,omitempty"`
	HasYard               *bool                `json:"has_yard,omitempty"`
	YardFenced            *bool                `json:"yard_fenced,omitempty"`
	HasOtherPets          *bool                `json:"has_other_pets,omitempty"`
	OtherPetsDetails      string               `json:"other_pets_details,omitempty"`
	PreviousPetExperience string               `json:"previous_pet_experience,omitempty"`
	References            []Reference          `json:"references"`
	Notes                 string               `json:"notes,omitempty"`
	Applications          []ApplicationSummary `json:"applications,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// @Summary Registrar adoptante
// @Description Formulario público. first_name, last_name, email y phone son obligatorios. El email no es único.
// @Tags adopters
// @Accept json
// @Produce json
// @Param payload body Request true "Datos del adoptante; date_of_birth YYYY-MM-DD"
// @Success 201 {object} respond.Envelope{data=adopterResponse}
// @Failure 400 {object} respond.Envelope
// @Router /adopters [post]
func createAdopterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		in, err := req.ToCreateInput()
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		a, err := svc.Create(r.Context(), middleware.ActorFrom(r), in)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.Message(w, http.StatusCreated, toAdopterResponse(a, nil), "adopter created")
	}
}

func (req Request) ToCreateInput() (CreateInput, error) {
	var dob *time.Time
	if strings.TrimSpace(req.DateOfBirth) != "" {
		t, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return CreateInput{}, errDateOfBirth
		}
		dob = &t
	}
	return CreateInput{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Address:               req.Address,
		City:                  req.City,
		State:                 req.State,
		ZipCode:               req.ZipCode,
		DateOfBirth:           dob,
		Occupation:            req.Occupation,
		HousingType:           req.HousingType,
		HousingOwned:          req.HousingOwned,
		HasYard:               req.HasYard,
		YardFenced:            req.YardFenced,
		HasOtherPets:          req.HasOtherPets,
		OtherPetsDetails:      req.OtherPetsDetails,
		PreviousPetExperience: req.PreviousPetExperience,
		References:            req.References,
		Notes:                 req.Notes,
	}, nil
}

// @Summary Listar adoptantes
// @Description Búsqueda por nombre, apellido o email. Solo staff.
// @Tags adopters
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param search query string false "Texto libre"
// @Param page query int false "Página (default 1)"
// @Param limit query int false "Tamaño de página (default 20, máx 100)"
// @Success 200 {object} respond.Envelope{data=[]adopterResponse}
// @Failure 401 {object} respond.Envelope
// @Router /adopters [get]
func listAdoptersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := pagination.FromQuery(q)

		items, total, err := svc.List(r.Context(), q.Get("search"), page)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		out := make([]adopterResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAdopterResponse(a, nil))
		}
		respond.Page(w, out, pagination.NewMeta(page, total))
	}
}

// @Summary Obtener adoptante
// @Description Incluye las solicitudes del adoptante. Solo staff.
// @Tags adopters
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param adopterID path int true "ID del adoptante"
// @Success 200 {object} respond.Envelope{data=adopterResponse}
// @Failure 404 {object} respond.Envelope
// @Router /adopters/{adopterID} [get]
func getAdopterHandler(svc *Service, apps ApplicationsLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "adopterID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid adopter id")
			return
		}

		a, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		summaries := []ApplicationSummary{}
		if apps != nil {
			summaries, err = apps.SummariesForAdopter(r.Context(), id)
			if err != nil {
				respond.Error(w, r, err)
				return
			}
		}

		respond.JSON(w, http.StatusOK, toAdopterResponse(a, summaries))
	}
}

// @Summary Actualizar adoptante
// @Description Update parcial. Los campos obligatorios no pueden quedar vacíos. Solo staff.
// @Tags adopters
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de staff"
// @Param Authorization header string false "Bearer token en producción"
// @Param adopterID path int true "ID del adoptante"
// @Param payload body updateAdopterRequest true "Campos a cambiar"
// @Success 200 {object} respond.Envelope{data=adopterResponse}
// @Failure 400 {object} respond.Envelope
// @Failure 404 {object} respond.Envelope
// @Router /adopters/{adopterID} [put]
func updateAdopterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "adopterID")
		if !ok {
			respond.Fail(w, http.StatusBadRequest, "invalid adopter id")
			return
		}

		var req updateAdopterRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.Update(r.Context(), middleware.ActorFrom(r), id, UpdateInput{
			FirstName:             req.FirstName,
			LastName:              req.LastName,
			Email:                 req.Email,
			Phone:                 req.Phone,
			Address:               req.Address,
			City:                  req.City,
			State:                 req.State,
			ZipCode:               req.ZipCode,
			Occupation:            req.Occupation,
			HousingType:           req.HousingType,
			HousingOwned:          req.HousingOwned,
			HasYard:               req.HasYard,
			YardFenced:            req.YardFenced,
			HasOtherPets:          req.HasOtherPets,
			OtherPetsDetails:      req.OtherPetsDetails,
			PreviousPetExperience: req.PreviousPetExperience,
			References:            req.References,
			Notes:                 req.Notes,
		})
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.Message(w, http.StatusOK, toAdopterResponse(a, nil), "adopter updated")
	}
}

func toAdopterResponse(a Adopter, apps []ApplicationSummary) adopterResponse {
	out := adopterResponse{
		ID:                    a.ID,
		FirstName:             a.FirstName,
		LastName:              a.LastName,
		Email:                 a.Email,
		Phone:                 a.Phone,
		Address:               a.Address,
		City:                  a.City,
		State:                 a.State,
		ZipCode:               a.ZipCode,
		Occupation:            a.Occupation,
		HousingType:           a.HousingType,
		HousingOwned:          a.HousingOwned,
		HasYard:               a.HasYard,
		YardFenced:            a.YardFenced,
		HasOtherPets:          a.HasOtherPets,
		OtherPetsDetails:      a.OtherPetsDetails,
		PreviousPetExperience: a.PreviousPetExperience,
		References:            a.References,
		Notes:                 a.Notes,
		Applications:          apps,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
	if out.References == nil {
		out.References = []Reference{}
	}
	if a.DateOfBirth != nil {
		out.DateOfBirth = a.DateOfBirth.Format("2006-01-02")
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
