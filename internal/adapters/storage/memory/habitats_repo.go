package memory

import (
	"context"
	"sort"

	"animal-sanctuary/internal/domain/habitats"
)

type habitatRepo struct {
	s *Store
}

func (r *habitatRepo) Create(ctx context.Context, h habitats.Habitat) (habitats.Habitat, error) {
	err := r.s.run(ctx, func(st *state) error {
		st.nextHabitat++
		h.ID = st.nextHabitat
		st.habitats[h.ID] = h
		return nil
	})
	return h, err
}

func (r *habitatRepo) GetByID(ctx context.Context, id int64) (habitats.Habitat, error) {
	var out habitats.Habitat
	err := r.s.run(ctx, func(st *state) error {
		h, ok := st.habitats[id]
		if !ok {
			return habitats.ErrNotFound
		}
		out = h
		return nil
	})
	return out, err
}

func (r *habitatRepo) List(ctx context.Context) ([]habitats.Habitat, error) {
	out := make([]habitats.Habitat, 0)
	err := r.s.run(ctx, func(st *state) error {
		for _, h := range st.habitats {
			out = append(out, h)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *habitatRepo) IncrementOccupancy(ctx context.Context, id int64) error {
	return r.s.run(ctx, func(st *state) error {
		h, ok := st.habitats[id]
		if !ok {
			return habitats.ErrNotFound
		}
		if h.CurrentOccupancy >= h.Capacity {
			return habitats.ErrAtCapacity
		}
		h.CurrentOccupancy++
		st.habitats[id] = h
		return nil
	})
}

func (r *habitatRepo) DecrementOccupancy(ctx context.Context, id int64) error {
	return r.s.run(ctx, func(st *state) error {
		h, ok := st.habitats[id]
		if !ok {
			return habitats.ErrNotFound
		}
		if h.CurrentOccupancy > 0 {
			h.CurrentOccupancy--
		}
		st.habitats[id] = h
		return nil
	})
}
