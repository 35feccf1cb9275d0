package memory

import (
	"context"
	"sort"
	"strings"

	"animal-sanctuary/internal/domain/adopters"
)

type adopterRepo struct {
	s *Store
}

func (r *adopterRepo) Create(ctx context.Context, a adopters.Adopter) (adopters.Adopter, error) {
	err := r.s.run(ctx, func(st *state) error {
		st.nextAdopter++
		a.ID = st.nextAdopter
		st.adopters[a.ID] = cloneAdopter(a)
		return nil
	})
	return a, err
}

func (r *adopterRepo) GetByID(ctx context.Context, id int64) (adopters.Adopter, error) {
	var out adopters.Adopter
	err := r.s.run(ctx, func(st *state) error {
		a, ok := st.adopters[id]
		if !ok {
			return adopters.ErrNotFound
		}
		out = cloneAdopter(a)
		return nil
	})
	return out, err
}

// GetForUpdate: el lock real es el mutex de la transacción.
func (r *adopterRepo) GetForUpdate(ctx context.Context, id int64) (adopters.Adopter, error) {
	return r.GetByID(ctx, id)
}

func (r *adopterRepo) Update(ctx context.Context, a adopters.Adopter) error {
	return r.s.run(ctx, func(st *state) error {
		if _, ok := st.adopters[a.ID]; !ok {
			return adopters.ErrNotFound
		}
		st.adopters[a.ID] = cloneAdopter(a)
		return nil
	})
}

func (r *adopterRepo) List(ctx context.Context, f adopters.ListFilter) ([]adopters.Adopter, int, error) {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]adopters.Adopter, 0)
	err := r.s.run(ctx, func(st *state) error {
		for _, a := range st.adopters {
			if needle == "" ||
				strings.Contains(strings.ToLower(a.FirstName), needle) ||
				strings.Contains(strings.ToLower(a.LastName), needle) ||
				strings.Contains(strings.ToLower(a.Email), needle) {
				out = append(out, cloneAdopter(a))
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	// Más nuevos primero.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := len(out)
	return page(out, f.Limit, f.Offset), total, nil
}

// References es un slice: no compartimos el backing array con el caller.
func cloneAdopter(a adopters.Adopter) adopters.Adopter {
	if a.References != nil {
		a.References = append([]adopters.Reference(nil), a.References...)
	}
	return a
}
