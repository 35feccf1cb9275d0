package adopters

import (
	"context"
	"regexp"
	"strings"
	"time"

	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/ports/auth"
	"animal-sanctuary/internal/ports/tx"
)

var (
	ErrInvalidInput = apperr.New(apperr.KindValidation, "invalid input")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "adopter not found")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type Service struct {
	repo  Repository
	tx    tx.Transactor
	audit audit.Recorder
	now   func() time.Time
}

func NewService(repo Repository, t tx.Transactor, rec audit.Recorder) *Service {
	return &Service{
		repo:  repo,
		tx:    t,
		audit: rec,
		now:   time.Now,
	}
}

type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string

	Address string
	City    string
	State   string
	ZipCode string

	DateOfBirth *time.Time
	Occupation  string

	HousingType  string
	HousingOwned *bool
	HasYard      *bool
	YardFenced   *bool

	HasOtherPets          *bool
	OtherPetsDetails      string
	PreviousPetExperience string

	References []Reference
	Notes      string
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (Adopter, error) {
	a, err := s.Insert(ctx, in)
	if err != nil {
		return Adopter{}, err
	}
	s.audit.Record(actor, audit.TableAdopters, a.ID, audit.ActionInsert, nil, a)
	return a, nil
}

// Insert valida y persiste sin registrar en el activity log: el caller
// (p.ej. una solicitud con adoptante inline) lo registra después de su commit.
func (s *Service) Insert(ctx context.Context, in CreateInput) (Adopter, error) {
	a := Adopter{
		FirstName:             strings.TrimSpace(in.FirstName),
		LastName:              strings.TrimSpace(in.LastName),
		Email:                 strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:                 strings.TrimSpace(in.Phone),
		Address:               strings.TrimSpace(in.Address),
		City:                  strings.TrimSpace(in.City),
		State:                 strings.TrimSpace(in.State),
		ZipCode:               strings.TrimSpace(in.ZipCode),
		DateOfBirth:           in.DateOfBirth,
		Occupation:            strings.TrimSpace(in.Occupation),
		HousingType:           strings.TrimSpace(in.HousingType),
		HousingOwned:          in.HousingOwned,
		HasYard:               in.HasYard,
		YardFenced:            in.YardFenced,
		HasOtherPets:          in.HasOtherPets,
		OtherPetsDetails:      strings.TrimSpace(in.OtherPetsDetails),
		PreviousPetExperience: strings.TrimSpace(in.PreviousPetExperience),
		References:            normalizeReferences(in.References),
		Notes:                 strings.TrimSpace(in.Notes),
	}
	if err := validate(a); err != nil {
		return Adopter{}, err
	}

	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return Adopter{}, apperr.OrStorage(err, "failed to create adopter")
	}
	return created, nil
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string

	Address *string
	City    *string
	State   *string
	ZipCode *string

	Occupation *string

	HousingType  *string
	HousingOwned *bool
	HasYard      *bool
	YardFenced   *bool

	HasOtherPets          *bool
	OtherPetsDetails      *string
	PreviousPetExperience *string

	References *[]Reference
	Notes      *string
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, in UpdateInput) (Adopter, error) {
	var before, after Adopter
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Lock de fila: dos PUT concurrentes se serializan y el segundo parte del resultado del primero.
		cur, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next := cur
		setString(&next.FirstName, in.FirstName)
		setString(&next.LastName, in.LastName)
		setString(&next.Phone, in.Phone)
		if in.Email != nil {
			next.Email = strings.ToLower(strings.TrimSpace(*in.Email))
		}
		setString(&next.Address, in.Address)
		setString(&next.City, in.City)
		setString(&next.State, in.State)
		setString(&next.ZipCode, in.ZipCode)
		setString(&next.Occupation, in.Occupation)
		setString(&next.HousingType, in.HousingType)
		setBool(&next.HousingOwned, in.HousingOwned)
		setBool(&next.HasYard, in.HasYard)
		setBool(&next.YardFenced, in.YardFenced)
		setBool(&next.HasOtherPets, in.HasOtherPets)
		setString(&next.OtherPetsDetails, in.OtherPetsDetails)
		setString(&next.PreviousPetExperience, in.PreviousPetExperience)
		setString(&next.Notes, in.Notes)
		if in.References != nil {
			next.References = normalizeReferences(*in.References)
		}

		if err := validate(next); err != nil {
			return err
		}

		next.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, next); err != nil {
			return err
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return Adopter{}, apperr.OrStorage(err, "failed to update adopter")
	}

	s.audit.Record(actor, audit.TableAdopters, after.ID, audit.ActionUpdate, before, after)
	return after, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Adopter, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Adopter{}, apperr.OrStorage(err, "failed to load adopter")
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, search string, page pagination.Params) ([]Adopter, int, error) {
	items, total, err := s.repo.List(ctx, ListFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, 0, apperr.OrStorage(err, "failed to list adopters")
	}
	return items, total, nil
}

func validate(a Adopter) error {
	switch {
	case a.FirstName == "":
		return apperr.Wrapf(ErrInvalidInput, "first_name is required")
	case a.LastName == "":
		return apperr.Wrapf(ErrInvalidInput, "last_name is required")
	case a.Email == "":
		return apperr.Wrapf(ErrInvalidInput, "email is required")
	case !emailRegex.MatchString(a.Email):
		return apperr.Wrapf(ErrInvalidInput, "email is not valid")
	case a.Phone == "":
		return apperr.Wrapf(ErrInvalidInput, "phone is required")
	}
	for _, ref := range a.References {
		if ref.Name == "" {
			return apperr.Wrapf(ErrInvalidInput, "every reference needs a name")
		}
	}
	return nil
}

func normalizeReferences(in []Reference) []Reference {
	out := make([]Reference, 0, len(in))
	for _, r := range in {
		out = append(out, Reference{
			Name:         strings.TrimSpace(r.Name),
			Phone:        strings.TrimSpace(r.Phone),
			Email:        strings.TrimSpace(r.Email),
			Relationship: strings.TrimSpace(r.Relationship),
		})
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setBool(dst **bool, v *bool) {
	if v != nil {
		b := *v
		*dst = &b
	}
}
