package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"animal-sanctuary/internal/domain/adopters"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/metrics"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/ports/auth"
	"animal-sanctuary/internal/ports/tx"
)

var (
	ErrInvalidInput = apperr.New(apperr.KindValidation, "invalid input")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "application not found")

	ErrUnknownAnimal  = apperr.New(apperr.KindValidation, "animal_id does not reference an existing animal")
	ErrUnknownAdopter = apperr.New(apperr.KindValidation, "adopter_id does not reference an existing adopter")

	ErrAnimalNotAvailable      = apperr.New(apperr.KindRule, "animal is not available for adoption")
	ErrActiveApplicationExists = apperr.New(apperr.KindConflict, "animal already has an active application")
	ErrReasonRequired          = apperr.New(apperr.KindValidation, "rejection reason is required")
	ErrTerminal                = apperr.New(apperr.KindRule, "application is closed")

	// ErrStaleStatus: otro request cambió el estado entre la lectura y la escritura.
	ErrStaleStatus = apperr.New(apperr.KindConflict, "application status changed concurrently")
	// ErrAlreadyAdopted: el animal fue adoptado por otra solicitud.
	ErrAlreadyAdopted = apperr.New(apperr.KindConflict, "animal has already been adopted")
)

type Service struct {
	repo     Repository
	animals  *animals.Service
	adopters *adopters.Service
	tx       tx.Transactor
	audit    audit.Recorder
	metrics  *metrics.Metrics
	machine  StateMachine
	now      func() time.Time
}

func NewService(
	repo Repository,
	an *animals.Service,
	ad *adopters.Service,
	t tx.Transactor,
	rec audit.Recorder,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		animals:  an,
		adopters: ad,
		tx:       t,
		audit:    rec,
		metrics:  m,
		machine:  NewStateMachine(),
		now:      time.Now,
	}
}

// SubmitInput: AdopterID o Adopter (inline), no ambos.
type SubmitInput struct {
	AdopterID int64
	Adopter   *adopters.CreateInput

	AnimalID int64

	ReasonForAdoption     string
	LivingArrangement     string
	References            string
	WorkSchedule          string
	PlanForPetCare        string
	PreferredAdoptionDate *time.Time
	MonthlyBudget         *float64
}

// Submit crea la solicitud en estado Submitted. El animal debe estar Available y sin
// otra solicitud activa; el lock sobre la fila del animal serializa envíos concurrentes.
// El estado del animal no cambia al enviar.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitInput) (Application, error) {
	if err := validateSubmit(in); err != nil {
		return Application{}, err
	}

	var (
		created    Application
		newAdopter *adopters.Adopter
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		animal, err := s.animals.Lock(ctx, in.AnimalID)
		if err != nil {
			if animals.IsNotFound(err) {
				return ErrUnknownAnimal
			}
			return err
		}
		if !animal.IsActive() {
			return ErrUnknownAnimal
		}
		if animal.AdoptionStatus != animals.StatusAvailable {
			return apperr.Wrapf(ErrAnimalNotAvailable, "animal %d is %s", animal.ID, animal.AdoptionStatus)
		}

		active, err := s.repo.ListActiveByAnimal(ctx, animal.ID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return apperr.Wrapf(ErrActiveApplicationExists, "animal %d already has application %d in review", animal.ID, active[0].ID)
		}

		adopterID := in.AdopterID
		if in.Adopter != nil {
			a, err := s.adopters.Insert(ctx, *in.Adopter)
			if err != nil {
				return err
			}
			newAdopter = &a
			adopterID = a.ID
		} else if _, err := s.adopters.GetByID(ctx, adopterID); err != nil {
			if errors.Is(err, adopters.ErrNotFound) {
				return ErrUnknownAdopter
			}
			return err
		}

		now := s.now()
		created, err = s.repo.Create(ctx, Application{
			AdopterID:             adopterID,
			AnimalID:              animal.ID,
			ApplicationDate:       truncateDay(now),
			Status:                StatusSubmitted,
			ReasonForAdoption:     strings.TrimSpace(in.ReasonForAdoption),
			LivingArrangement:     strings.TrimSpace(in.LivingArrangement),
			References:            strings.TrimSpace(in.References),
			WorkSchedule:          strings.TrimSpace(in.WorkSchedule),
			PlanForPetCare:        strings.TrimSpace(in.PlanForPetCare),
			PreferredAdoptionDate: dayPtr(in.PreferredAdoptionDate),
			MonthlyBudget:         in.MonthlyBudget,
			CreatedAt:             now,
			UpdatedAt:             now,
		})
		return err
	})
	if err != nil {
		return Application{}, apperr.OrStorage(err, "failed to submit application")
	}

	if newAdopter != nil {
		s.audit.Record(actor, audit.TableAdopters, newAdopter.ID, audit.ActionInsert, nil, *newAdopter)
	}
	s.audit.Record(actor, audit.TableApplications, created.ID, audit.ActionInsert, nil, created)
	return created, nil
}

func validateSubmit(in SubmitInput) error {
	if in.AnimalID <= 0 {
		return apperr.Wrapf(ErrInvalidInput, "animal_id is required")
	}
	switch {
	case in.Adopter != nil && in.AdopterID != 0:
		return apperr.Wrapf(ErrInvalidInput, "send either adopter_id or adopter, not both")
	case in.Adopter == nil && in.AdopterID <= 0:
		return apperr.Wrapf(ErrInvalidInput, "adopter_id or adopter is required")
	}
	if in.MonthlyBudget != nil && *in.MonthlyBudget < 0 {
		return apperr.Wrapf(ErrInvalidInput, "monthly_budget must be non-negative")
	}
	return nil
}

type StatusInput struct {
	Status string
	Reason string
}

// UpdateStatus aplica una transición validada contra la máquina de estados.
// Orden de locks: fila del animal, luego la solicitud. Aprobar marca el animal como
// Adopted y rechaza las demás solicitudes activas del mismo animal, todo en una transacción.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id int64, in StatusInput) (Application, error) {
	to, ok := ParseStatus(in.Status)
	if !ok {
		return Application{}, apperr.Wrapf(ErrInvalidInput, "invalid status %q", in.Status)
	}
	reason := strings.TrimSpace(in.Reason)
	if to == StatusRejected && reason == "" {
		return Application{}, ErrReasonRequired
	}

	var (
		before, after  Application
		animalBefore   animals.Animal
		animalAfter    *animals.Animal
		rejectedBefore []Application
		rejectedAfter  []Application
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		peek, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		animal, err := s.animals.Lock(ctx, peek.AnimalID)
		if err != nil {
			return err
		}

		cur, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.machine.Validate(cur.Status, to); err != nil {
			return err
		}

		now := s.now()
		next := cur
		next.Status = to
		next.UpdatedAt = now

		switch to {
		case StatusApproved:
			if !animal.IsActive() {
				return apperr.Wrapf(ErrAnimalNotAvailable, "animal %d is no longer in the sanctuary", animal.ID)
			}
			if animal.AdoptionStatus == animals.StatusAdopted {
				return ErrAlreadyAdopted
			}
			day := truncateDay(now)
			next.ApprovalDate = &day
		case StatusRejected:
			next.RejectionReason = reason
		}

		if err := s.repo.UpdateStatus(ctx, next, cur.Status); err != nil {
			return err
		}
		before, after = cur, next

		if to != StatusApproved {
			return nil
		}

		adopted, err := s.animals.MarkAdopted(ctx, animal)
		if err != nil {
			return err
		}
		animalBefore, animalAfter = animal, &adopted

		siblings, err := s.repo.ListActiveByAnimal(ctx, animal.ID)
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.ID == next.ID {
				continue
			}
			rej := sib
			rej.Status = StatusRejected
			rej.RejectionReason = AutoRejectReason
			rej.UpdatedAt = now
			if err := s.repo.UpdateStatus(ctx, rej, sib.Status); err != nil {
				return err
			}
			rejectedBefore = append(rejectedBefore, sib)
			rejectedAfter = append(rejectedAfter, rej)
		}
		return nil
	})
	if err != nil {
		return Application{}, apperr.OrStorage(err, "failed to update application status")
	}

	s.audit.Record(actor, audit.TableApplications, after.ID, audit.ActionUpdate, before, after)
	s.metrics.ApplicationTransition(string(to), "staff")

	if animalAfter != nil {
		s.audit.Record(actor, audit.TableAnimals, animalAfter.ID, audit.ActionUpdate, animalBefore, *animalAfter)
	}
	for i := range rejectedAfter {
		s.audit.Record(actor, audit.TableApplications, rejectedAfter[i].ID, audit.ActionUpdate, rejectedBefore[i], rejectedAfter[i])
		s.metrics.ApplicationTransition(string(StatusRejected), "auto")
	}
	return after, nil
}

// DetailsInput: nil = no tocar.
type DetailsInput struct {
	StaffNotes    *string
	InterviewDate *time.Time
}

// UpdateDetails edita campos de staff. Una solicitud cerrada solo admite staff_notes.
func (s *Service) UpdateDetails(ctx context.Context, actor auth.Actor, id int64, in DetailsInput) (Application, error) {
	var before, after Application
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next := cur
		if in.StaffNotes != nil {
			next.StaffNotes = strings.TrimSpace(*in.StaffNotes)
		}
		if in.InterviewDate != nil {
			if cur.Status.IsTerminal() {
				return apperr.Wrapf(ErrTerminal, "application is %s; only staff_notes can change", cur.Status)
			}
			next.InterviewDate = dayPtr(in.InterviewDate)
		}
		next.UpdatedAt = s.now()

		if err := s.repo.UpdateDetails(ctx, next); err != nil {
			return err
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return Application{}, apperr.OrStorage(err, "failed to update application")
	}

	s.audit.Record(actor, audit.TableApplications, after.ID, audit.ActionUpdate, before, after)
	return after, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Application, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, apperr.OrStorage(err, "failed to load application")
	}
	return a, nil
}

type ListInput struct {
	Status    string
	AdopterID int64
	AnimalID  int64
	Page      pagination.Params
}

func (s *Service) List(ctx context.Context, in ListInput) ([]Application, int, error) {
	f := ListFilter{
		AdopterID: in.AdopterID,
		AnimalID:  in.AnimalID,
		Limit:     in.Page.Limit,
		Offset:    in.Page.Offset(),
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
		return nil, 0, apperr.OrStorage(err, "failed to list applications")
	}
	return items, total, nil
}

// SummariesForAdopter alimenta el detalle del adoptante.
func (s *Service) SummariesForAdopter(ctx context.Context, adopterID int64) ([]adopters.ApplicationSummary, error) {
	items, _, err := s.repo.List(ctx, ListFilter{AdopterID: adopterID})
	if err != nil {
		return nil, apperr.OrStorage(err, "failed to list applications")
	}
	out := make([]adopters.ApplicationSummary, 0, len(items))
	for _, a := range items {
		out = append(out, adopters.ApplicationSummary{
			ApplicationID:   a.ID,
			AnimalID:        a.AnimalID,
			Status:          string(a.Status),
			ApplicationDate: a.ApplicationDate,
		})
	}
	return out, nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := truncateDay(*t)
	return &d
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
