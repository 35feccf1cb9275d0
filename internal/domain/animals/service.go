package animals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/ports/auth"
	"animal-sanctuary/internal/ports/tx"
)

var (
	ErrInvalidInput       = apperr.New(apperr.KindValidation, "invalid input")
	ErrNotFound           = apperr.New(apperr.KindNotFound, "animal not found")
	ErrDuplicateMicrochip = apperr.New(apperr.KindConflict, "duplicate microchip")
	ErrOpenApplications   = apperr.New(apperr.KindConflict, "animal has open adoption applications")

	// Solo la aprobación de una solicitud puede marcar Adopted.
	ErrAdoptedViaApproval = apperr.New(apperr.KindRule, "adopted status can only be set by approving an application")
	ErrStatusLocked       = apperr.New(apperr.KindRule, "status of an adopted animal cannot be changed")
)

type Options struct {
	// Al retirar un animal, liberar su lugar en el hábitat.
	ReleaseHabitatOnRetire bool
}

type Service struct {
	repo     Repository
	habitats *habitats.Service
	tx       tx.Transactor
	audit    audit.Recorder
	opts     Options
	now      func() time.Time
}

func NewService(repo Repository, hab *habitats.Service, t tx.Transactor, rec audit.Recorder, opts Options) *Service {
	return &Service{
		repo:     repo,
		habitats: hab,
		tx:       t,
		audit:    rec,
		opts:     opts,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name    string
	Species string
	Breed   string
	Age     *int
	Gender  string

	WeightKg    *float64
	Color       string
	ArrivalDate *time.Time // default: hoy
	Source      string

	AdoptionStatus string // default Available
	AdoptionFee    *float64
	HabitatID      *int64

	DietaryRequirements string
	BehavioralNotes     string
	SpecialNeeds        string
	MicrochipNumber     string
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (Animal, error) {
	a, err := s.newAnimal(in)
	if err != nil {
		return Animal{}, err
	}

	var created Animal
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if a.MicrochipNumber != "" {
			inUse, err := s.repo.MicrochipInUse(ctx, a.MicrochipNumber, 0)
			if err != nil {
				return err
			}
			if inUse {
				return apperr.Wrapf(ErrDuplicateMicrochip, "microchip %s is already registered", a.MicrochipNumber)
			}
		}

		// Capacidad + incremento + insert en la misma transacción.
		if a.HabitatID != nil {
			if err := s.habitats.Admit(ctx, *a.HabitatID); err != nil {
				return err
			}
		}

		var err error
		created, err = s.repo.Create(ctx, a)
		return err
	})
	if err != nil {
		return Animal{}, apperr.OrStorage(err, "failed to create animal")
	}

	s.audit.Record(actor, audit.TableAnimals, created.ID, audit.ActionInsert, nil, created)
	return created, nil
}

func (s *Service) newAnimal(in CreateInput) (Animal, error) {
	name := strings.TrimSpace(in.Name)
	species := strings.TrimSpace(in.Species)
	breed := strings.TrimSpace(in.Breed)

	if name == "" {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "name is required")
	}
	if species == "" {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "species is required")
	}
	if breed == "" {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "breed is required")
	}
	if in.Age == nil {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "age is required")
	}
	if *in.Age < 0 {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "age must be zero or positive")
	}
	if strings.TrimSpace(in.Gender) == "" {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "gender is required")
	}
	gender, ok := ParseGender(in.Gender)
	if !ok {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "gender must be one of Male, Female, Unknown")
	}

	status := StatusAvailable
	if strings.TrimSpace(in.AdoptionStatus) != "" {
		st, ok := ParseStatus(in.AdoptionStatus)
		if !ok {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "invalid adoption_status %q", in.AdoptionStatus)
		}
		if st == StatusAdopted {
			return Animal{}, ErrAdoptedViaApproval
		}
		status = st
	}

	var fee float64
	if in.AdoptionFee != nil {
		fee = *in.AdoptionFee
	}
	if fee < 0 {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "adoption_fee must be non-negative")
	}
	if in.WeightKg != nil && *in.WeightKg <= 0 {
		return Animal{}, apperr.Wrapf(ErrInvalidInput, "weight_kg must be positive")
	}

	now := s.now()
	arrival := truncateDay(now)
	if in.ArrivalDate != nil {
		arrival = truncateDay(*in.ArrivalDate)
	}

	return Animal{
		Name:                name,
		Species:             species,
		Breed:               breed,
		Age:                 *in.Age,
		WeightKg:            in.WeightKg,
		Gender:              gender,
		Color:               strings.TrimSpace(in.Color),
		ArrivalDate:         arrival,
		Source:              strings.TrimSpace(in.Source),
		AdoptionStatus:      status,
		AdoptionFee:         fee,
		HabitatID:           in.HabitatID,
		DietaryRequirements: strings.TrimSpace(in.DietaryRequirements),
		BehavioralNotes:     strings.TrimSpace(in.BehavioralNotes),
		SpecialNeeds:        strings.TrimSpace(in.SpecialNeeds),
		MicrochipNumber:     strings.TrimSpace(in.MicrochipNumber),
		Lifecycle:           LifecycleActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// OptionalID distingue "habitat_id no enviado" de "habitat_id": null.
type OptionalID struct {
	Present bool
	Value   *int64
}

// UnmarshalJSON solo corre si la clave vino en el body, incluso con null.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Present = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var id int64
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// UpdateInput: punteros para PATCH real, nil = no tocar.
type UpdateInput struct {
	Name    *string
	Species *string
	Breed   *string
	Age     *int
	Gender  *string

	WeightKg    *float64
	Color       *string
	ArrivalDate *time.Time
	Source      *string

	AdoptionStatus *string
	AdoptionFee    *float64
	HabitatID      OptionalID

	DietaryRequirements *string
	BehavioralNotes     *string
	SpecialNeeds        *string
	MicrochipNumber     *string // "" = quitar
}

// Update aplica cambios parciales. El estado no pasa por la máquina de estados
// de solicitudes, pero nunca puede llegar a Adopted ni salir de Adopted por acá.
// Cambiar habitat_id mueve al animal: ocupa en el nuevo y libera en el viejo.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, in UpdateInput) (Animal, error) {
	var before, after Animal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !cur.IsActive() {
			return ErrNotFound
		}

		next, err := s.applyPatch(cur, in)
		if err != nil {
			return err
		}

		if next.MicrochipNumber != "" && next.MicrochipNumber != cur.MicrochipNumber {
			inUse, err := s.repo.MicrochipInUse(ctx, next.MicrochipNumber, cur.ID)
			if err != nil {
				return err
			}
			if inUse {
				return apperr.Wrapf(ErrDuplicateMicrochip, "microchip %s is already registered", next.MicrochipNumber)
			}
		}

		if !sameHabitat(cur.HabitatID, next.HabitatID) {
			if next.HabitatID != nil {
				if err := s.habitats.Admit(ctx, *next.HabitatID); err != nil {
					return err
				}
			}
			if cur.HabitatID != nil {
				if err := s.habitats.Release(ctx, *cur.HabitatID); err != nil {
					return err
				}
			}
		}

		next.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, next); err != nil {
			return err
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return Animal{}, apperr.OrStorage(err, "failed to update animal")
	}

	s.audit.Record(actor, audit.TableAnimals, after.ID, audit.ActionUpdate, before, after)
	return after, nil
}

func (s *Service) applyPatch(cur Animal, in UpdateInput) (Animal, error) {
	next := cur

	if in.Name != nil {
		if next.Name = strings.TrimSpace(*in.Name); next.Name == "" {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "name cannot be empty")
		}
	}
	if in.Species != nil {
		if next.Species = strings.TrimSpace(*in.Species); next.Species == "" {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "species cannot be empty")
		}
	}
	if in.Breed != nil {
		if next.Breed = strings.TrimSpace(*in.Breed); next.Breed == "" {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "breed cannot be empty")
		}
	}
	if in.Age != nil {
		if *in.Age < 0 {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "age must be zero or positive")
		}
		next.Age = *in.Age
	}
	if in.Gender != nil {
		g, ok := ParseGender(*in.Gender)
		if !ok {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "gender must be one of Male, Female, Unknown")
		}
		next.Gender = g
	}
	if in.WeightKg != nil {
		if *in.WeightKg <= 0 {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "weight_kg must be positive")
		}
		w := *in.WeightKg
		next.WeightKg = &w
	}
	if in.Color != nil {
		next.Color = strings.TrimSpace(*in.Color)
	}
	if in.ArrivalDate != nil {
		next.ArrivalDate = truncateDay(*in.ArrivalDate)
	}
	if in.Source != nil {
		next.Source = strings.TrimSpace(*in.Source)
	}
	if in.AdoptionStatus != nil {
		st, ok := ParseStatus(*in.AdoptionStatus)
		if !ok {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "invalid adoption_status %q", *in.AdoptionStatus)
		}
		if st != cur.AdoptionStatus {
			if cur.AdoptionStatus == StatusAdopted {
				return Animal{}, ErrStatusLocked
			}
			if st == StatusAdopted {
				return Animal{}, ErrAdoptedViaApproval
			}
		}
		next.AdoptionStatus = st
	}
	if in.AdoptionFee != nil {
		if *in.AdoptionFee < 0 {
			return Animal{}, apperr.Wrapf(ErrInvalidInput, "adoption_fee must be non-negative")
		}
		next.AdoptionFee = *in.AdoptionFee
	}
	if in.HabitatID.Present {
		next.HabitatID = in.HabitatID.Value
	}
	if in.DietaryRequirements != nil {
		next.DietaryRequirements = strings.TrimSpace(*in.DietaryRequirements)
	}
	if in.BehavioralNotes != nil {
		next.BehavioralNotes = strings.TrimSpace(*in.BehavioralNotes)
	}
	if in.SpecialNeeds != nil {
		next.SpecialNeeds = strings.TrimSpace(*in.SpecialNeeds)
	}
	if in.MicrochipNumber != nil {
		next.MicrochipNumber = strings.TrimSpace(*in.MicrochipNumber)
	}

	return next, nil
}

// SoftDelete retira al animal (nunca se borra físicamente).
// Por defecto la ocupación del hábitat queda como estaba; con ReleaseHabitatOnRetire
// se libera el lugar y el animal queda sin hábitat.
// Con solicitudes abiertas responde ErrOpenApplications: primero hay que rechazarlas o retirarlas.
func (s *Service) SoftDelete(ctx context.Context, actor auth.Actor, id int64) error {
	var before, after Animal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !cur.IsActive() {
			return ErrNotFound
		}
		// Submit toma el mismo lock de fila, no puede colarse una solicitud nueva.
		open, err := s.repo.HasOpenApplications(ctx, id)
		if err != nil {
			return err
		}
		if open {
			return ErrOpenApplications
		}

		next := cur
		next.Lifecycle = LifecycleRetired
		next.UpdatedAt = s.now()

		if s.opts.ReleaseHabitatOnRetire && cur.HabitatID != nil {
			if err := s.habitats.Release(ctx, *cur.HabitatID); err != nil {
				return err
			}
			next.HabitatID = nil
		}

		if err := s.repo.Update(ctx, next); err != nil {
			return err
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return apperr.OrStorage(err, "failed to delete animal")
	}

	s.audit.Record(actor, audit.TableAnimals, id, audit.ActionDelete, before, after)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Animal, error) {
	a, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return Animal{}, apperr.OrStorage(err, "failed to load animal")
	}
	return a, nil
}

type ListInput struct {
	Status        string
	Species       string
	HabitatID     *int64
	AvailableOnly bool
	Sort          string
	Order         string // asc | desc
	Page          pagination.Params
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Animal, int, error) {
	f := ListFilter{
		Species:       strings.TrimSpace(in.Species),
		HabitatID:     in.HabitatID,
		AvailableOnly: in.AvailableOnly,
		Sort:          ParseSortKey(in.Sort),
		Desc:          strings.EqualFold(strings.TrimSpace(in.Order), "desc"),
		Limit:         in.Page.Limit,
		Offset:        in.Page.Offset(),
	}
	if strings.TrimSpace(in.Status) != "" {
		st, ok := ParseStatus(in.Status)
		if !ok {
			return nil, 0, apperr.Wrapf(ErrInvalidInput, "invalid status filter %q", in.Status)
		}
		f.Status = &st
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.OrStorage(err, "failed to list animals")
	}
	return items, total, nil
}

// Lock bloquea la fila del animal dentro de la transacción del caller.
// Es el punto de serialización de las aprobaciones de solicitudes.
func (s *Service) Lock(ctx context.Context, id int64) (Animal, error) {
	a, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		return Animal{}, apperr.OrStorage(err, "failed to load animal")
	}
	return a, nil
}

// MarkAdopted es el único camino a Adopted. El caller debe tener el lock (Lock)
// y registrar el cambio en el activity log después del commit.
func (s *Service) MarkAdopted(ctx context.Context, a Animal) (Animal, error) {
	if !a.IsActive() {
		return Animal{}, ErrNotFound
	}
	next := a
	next.AdoptionStatus = StatusAdopted
	next.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, next); err != nil {
		return Animal{}, apperr.OrStorage(err, "failed to update animal")
	}
	return next, nil
}

// IsNotFound se usa desde otros módulos para traducir el 404 a un error de referencia.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func sameHabitat(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
