// Package memory es un store en proceso para modo dev y tests.
// Todas las transacciones se serializan con un único mutex; un rollback restaura
// el snapshot tomado al abrir la transacción.
package memory

import (
	"context"
	"errors"
	"sync"

	"animal-sanctuary/internal/domain/adopters"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/domain/applications"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/platform/health"
)

var ErrUnavailable = errors.New("memory store unavailable")

type state struct {
	habitats     map[int64]habitats.Habitat
	animals      map[int64]animals.Animal
	adopters     map[int64]adopters.Adopter
	applications map[int64]applications.Application

	nextHabitat     int64
	nextAnimal      int64
	nextAdopter     int64
	nextApplication int64
}

func newState() *state {
	return &state{
		habitats:     make(map[int64]habitats.Habitat),
		animals:      make(map[int64]animals.Animal),
		adopters:     make(map[int64]adopters.Adopter),
		applications: make(map[int64]applications.Application),
	}
}

func (s *state) clone() *state {
	out := &state{
		habitats:        make(map[int64]habitats.Habitat, len(s.habitats)),
		animals:         make(map[int64]animals.Animal, len(s.animals)),
		adopters:        make(map[int64]adopters.Adopter, len(s.adopters)),
		applications:    make(map[int64]applications.Application, len(s.applications)),
		nextHabitat:     s.nextHabitat,
		nextAnimal:      s.nextAnimal,
		nextAdopter:     s.nextAdopter,
		nextApplication: s.nextApplication,
	}
	for k, v := range s.habitats {
		out.habitats[k] = v
	}
	for k, v := range s.animals {
		out.animals[k] = v
	}
	for k, v := range s.adopters {
		out.adopters[k] = v
	}
	for k, v := range s.applications {
		out.applications[k] = v
	}
	return out
}

type txKey struct{}

type Store struct {
	mu sync.Mutex
	st *state

	audit *auditRepo

	downMu sync.RWMutex
	down   bool
}

func NewStore() *Store {
	return &Store{
		st:    newState(),
		audit: newAuditRepo(),
	}
}

// WithinTx corre fn con el store bloqueado. Si fn devuelve error (o hace panic)
// el estado vuelve al snapshot previo. Llamadas anidadas se unen a la transacción externa.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.clone()
	committed := false
	defer func() {
		if !committed {
			s.st = snap
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		return err
	}
	committed = true
	return nil
}

// run ejecuta fn sobre el estado: dentro de una transacción ya tenemos el lock.
func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if inTx(ctx) {
		return fn(s.st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *Store) Habitats() habitats.Repository         { return &habitatRepo{s: s} }
func (s *Store) Animals() animals.Repository           { return &animalRepo{s: s} }
func (s *Store) Adopters() adopters.Repository         { return &adopterRepo{s: s} }
func (s *Store) Applications() applications.Repository { return &applicationRepo{s: s} }
func (s *Store) Audit() audit.Repository                { return s.audit }

// SetUnavailable simula una caída del store (Ping falla).
func (s *Store) SetUnavailable(down bool) {
	s.downMu.Lock()
	s.down = down
	s.downMu.Unlock()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.downMu.RLock()
	defer s.downMu.RUnlock()
	if s.down {
		return ErrUnavailable
	}
	return nil
}

func (s *Store) Stats(ctx context.Context) (health.Stats, error) {
	var out health.Stats
	err := s.run(ctx, func(st *state) error {
		for _, a := range st.animals {
			if !a.IsActive() {
				continue
			}
			out.TotalAnimals++
			if a.AdoptionStatus == animals.StatusAvailable {
				out.AvailableAnimals++
			}
		}
		out.TotalAdopters = len(st.adopters)
		for _, app := range st.applications {
			if !app.Status.IsTerminal() {
				out.PendingApplications++
			}
		}
		out.TotalHabitats = len(st.habitats)
		return nil
	})
	return out, err
}

// Fixtures carga registros tal cual, sin validar invariantes (datos importados o de demo).
// Los IDs deben venir seteados.
type Fixtures struct {
	Habitats     []habitats.Habitat
	Animals      []animals.Animal
	Adopters     []adopters.Adopter
	Applications []applications.Application
}

func (s *Store) Load(f Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st
	for _, h := range f.Habitats {
		st.habitats[h.ID] = h
		st.nextHabitat = max(st.nextHabitat, h.ID)
	}
	for _, a := range f.Animals {
		st.animals[a.ID] = a
		st.nextAnimal = max(st.nextAnimal, a.ID)
	}
	for _, a := range f.Adopters {
		st.adopters[a.ID] = a
		st.nextAdopter = max(st.nextAdopter, a.ID)
	}
	for _, a := range f.Applications {
		st.applications[a.ID] = a
		st.nextApplication = max(st.nextApplication, a.ID)
	}
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
