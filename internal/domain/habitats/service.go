package habitats

import (
	"context"
	"errors"
	"strings"
	"time"

	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/metrics"
)

var (
	ErrInvalidInput = apperr.New(apperr.KindValidation, "invalid input")
	ErrNotFound     = apperr.New(apperr.KindNotFound, "habitat not found")
	ErrInvalidRef   = apperr.New(apperr.KindValidation, "invalid habitat id")
	ErrAtCapacity   = apperr.New(apperr.KindRule, "habitat at capacity")
)

type Service struct {
	repo    Repository
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(repo Repository, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		metrics: m,
		now:     time.Now,
	}
}

type CreateInput struct {
	Name             string
	Type             string
	Capacity         int
	TemperatureRange string
	SpecialFeatures  string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Habitat, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Habitat{}, apperr.Wrapf(ErrInvalidInput, "name is required")
	}
	typ, ok := ParseType(strings.ToLower(strings.TrimSpace(in.Type)))
	if !ok {
		return Habitat{}, apperr.Wrapf(ErrInvalidInput, "type must be one of indoor, outdoor, mixed")
	}
	if in.Capacity <= 0 {
		return Habitat{}, apperr.Wrapf(ErrInvalidInput, "capacity must be a positive integer")
	}

	now := s.now()
	h, err := s.repo.Create(ctx, Habitat{
		Name:             name,
		Type:             typ,
		Capacity:         in.Capacity,
		CurrentOccupancy: 0,
		TemperatureRange: strings.TrimSpace(in.TemperatureRange),
		SpecialFeatures:  strings.TrimSpace(in.SpecialFeatures),
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return Habitat{}, apperr.OrStorage(err, "failed to create habitat")
	}
	return h, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (Habitat, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Habitat{}, apperr.OrStorage(err, "failed to load habitat")
	}
	return h, nil
}

func (s *Service) List(ctx context.Context) ([]Habitat, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.OrStorage(err, "failed to list habitats")
	}
	return items, nil
}

// CheckCapacity responde si queda lugar. Es solo informativo:
// la admisión real la decide el compare-and-set de Admit.
func (s *Service) CheckCapacity(ctx context.Context, id int64) (bool, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, apperr.OrStorage(err, "failed to load habitat")
	}
	return h.HasRoom(), nil
}

// Admit ocupa un lugar en el hábitat. Debe llamarse dentro de la transacción
// de la operación que asigna el animal, así un fallo posterior lo deshace.
func (s *Service) Admit(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.Wrapf(ErrInvalidRef, "habitat %d does not exist", id)
		}
		return apperr.OrStorage(err, "failed to load habitat")
	}

	if err := s.repo.IncrementOccupancy(ctx, id); err != nil {
		if errors.Is(err, ErrAtCapacity) {
			s.metrics.CapacityRejected()
			return apperr.Wrapf(ErrAtCapacity, "habitat %d is at capacity", id)
		}
		return apperr.OrStorage(err, "failed to update habitat occupancy")
	}
	return nil
}

// Release libera un lugar (misma regla de transacción que Admit).
func (s *Service) Release(ctx context.Context, id int64) error {
	if err := s.repo.DecrementOccupancy(ctx, id); err != nil {
		return apperr.OrStorage(err, "failed to update habitat occupancy")
	}
	return nil
}
