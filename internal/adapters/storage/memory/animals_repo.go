package memory

import (
	"context"
	"sort"
	"strings"

	"animal-sanctuary/internal/domain/animals"
)

type animalRepo struct {
	s *Store
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	err := r.s.run(ctx, func(st *state) error {
		if a.MicrochipNumber != "" && chipTaken(st, a.MicrochipNumber, 0) {
			return animals.ErrDuplicateMicrochip
		}
		st.nextAnimal++
		a.ID = st.nextAnimal
		st.animals[a.ID] = a
		return nil
	})
	return a, err
}

func (r *animalRepo) GetActive(ctx context.Context, id int64) (animals.Animal, error) {
	var out animals.Animal
	err := r.s.run(ctx, func(st *state) error {
		a, ok := st.animals[id]
		if !ok || !a.IsActive() {
			return animals.ErrNotFound
		}
		out = a
		return nil
	})
	return out, err
}

// GetForUpdate: el lock real es el mutex de la transacción.
func (r *animalRepo) GetForUpdate(ctx context.Context, id int64) (animals.Animal, error) {
	var out animals.Animal
	err := r.s.run(ctx, func(st *state) error {
		a, ok := st.animals[id]
		if !ok {
			return animals.ErrNotFound
		}
		out = a
		return nil
	})
	return out, err
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	return r.s.run(ctx, func(st *state) error {
		cur, ok := st.animals[a.ID]
		if !ok || !cur.IsActive() {
			return animals.ErrNotFound
		}
		if a.MicrochipNumber != "" && a.IsActive() && chipTaken(st, a.MicrochipNumber, a.ID) {
			return animals.ErrDuplicateMicrochip
		}
		st.animals[a.ID] = a
		return nil
	})
}

func (r *animalRepo) MicrochipInUse(ctx context.Context, chip string, excludeID int64) (bool, error) {
	var used bool
	err := r.s.run(ctx, func(st *state) error {
		used = chipTaken(st, chip, excludeID)
		return nil
	})
	return used, err
}

func (r *animalRepo) HasOpenApplications(ctx context.Context, animalID int64) (bool, error) {
	var open bool
	err := r.s.run(ctx, func(st *state) error {
		for _, app := range st.applications {
			if app.AnimalID == animalID && !app.Status.IsTerminal() {
				open = true
				return nil
			}
		}
		return nil
	})
	return open, err
}

func chipTaken(st *state, chip string, excludeID int64) bool {
	for _, a := range st.animals {
		if a.ID != excludeID && a.IsActive() && a.MicrochipNumber == chip {
			return true
		}
	}
	return false
}

func (r *animalRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, int, error) {
	out := make([]animals.Animal, 0)
	err := r.s.run(ctx, func(st *state) error {
		for _, a := range st.animals {
			if matchAnimal(a, f) {
				out = append(out, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	less := animalLess(f.Sort)
	sort.SliceStable(out, func(i, j int) bool {
		if f.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	total := len(out)
	return page(out, f.Limit, f.Offset), total, nil
}

func matchAnimal(a animals.Animal, f animals.ListFilter) bool {
	if !a.IsActive() {
		return false
	}
	if f.AvailableOnly && a.AdoptionStatus != animals.StatusAvailable {
		return false
	}
	if f.Status != nil && a.AdoptionStatus != *f.Status {
		return false
	}
	if f.Species != "" && !strings.EqualFold(a.Species, f.Species) {
		return false
	}
	if f.HabitatID != nil && (a.HabitatID == nil || *a.HabitatID != *f.HabitatID) {
		return false
	}
	return true
}

// animalLess desempata por ID para que la paginación sea estable.
func animalLess(k animals.SortKey) func(a, b animals.Animal) bool {
	return func(a, b animals.Animal) bool {
		switch k {
		case animals.SortSpecies:
			if a.Species != b.Species {
				return a.Species < b.Species
			}
		case animals.SortAge:
			if a.Age != b.Age {
				return a.Age < b.Age
			}
		case animals.SortArrivalDate:
			if !a.ArrivalDate.Equal(b.ArrivalDate) {
				return a.ArrivalDate.Before(b.ArrivalDate)
			}
		case animals.SortAdoptionStatus:
			if a.AdoptionStatus != b.AdoptionStatus {
				return a.AdoptionStatus < b.AdoptionStatus
			}
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.ID < b.ID
	}
}
