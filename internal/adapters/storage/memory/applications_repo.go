package memory

import (
	"context"
	"sort"

	"animal-sanctuary/internal/domain/applications"
)

type applicationRepo struct {
	s *Store
}

func (r *applicationRepo) Create(ctx context.Context, a applications.Application) (applications.Application, error) {
	err := r.s.run(ctx, func(st *state) error {
		if !a.Status.IsTerminal() {
			for _, other := range st.applications {
				if other.AnimalID == a.AnimalID && !other.Status.IsTerminal() {
					return applications.ErrActiveApplicationExists
				}
			}
		}
		st.nextApplication++
		a.ID = st.nextApplication
		st.applications[a.ID] = a
		return nil
	})
	return a, err
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (applications.Application, error) {
	var out applications.Application
	err := r.s.run(ctx, func(st *state) error {
		a, ok := st.applications[id]
		if !ok {
			return applications.ErrNotFound
		}
		out = a
		return nil
	})
	return out, err
}

func (r *applicationRepo) GetForUpdate(ctx context.Context, id int64) (applications.Application, error) {
	return r.GetByID(ctx, id)
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, a applications.Application, from applications.Status) error {
	return r.s.run(ctx, func(st *state) error {
		cur, ok := st.applications[a.ID]
		if !ok {
			return applications.ErrNotFound
		}
		if cur.Status != from {
			return applications.ErrStaleStatus
		}
		cur.Status = a.Status
		cur.ApprovalDate = a.ApprovalDate
		cur.RejectionReason = a.RejectionReason
		cur.UpdatedAt = a.UpdatedAt
		st.applications[a.ID] = cur
		return nil
	})
}

func (r *applicationRepo) UpdateDetails(ctx context.Context, a applications.Application) error {
	return r.s.run(ctx, func(st *state) error {
		cur, ok := st.applications[a.ID]
		if !ok {
			return applications.ErrNotFound
		}
		cur.StaffNotes = a.StaffNotes
		cur.InterviewDate = a.InterviewDate
		cur.UpdatedAt = a.UpdatedAt
		st.applications[a.ID] = cur
		return nil
	})
}

func (r *applicationRepo) ListActiveByAnimal(ctx context.Context, animalID int64) ([]applications.Application, error) {
	out := make([]applications.Application, 0)
	err := r.s.run(ctx, func(st *state) error {
		for _, a := range st.applications {
			if a.AnimalID == animalID && !a.Status.IsTerminal() {
				out = append(out, a)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (r *applicationRepo) List(ctx context.Context, f applications.ListFilter) ([]applications.Application, int, error) {
	out := make([]applications.Application, 0)
	err := r.s.run(ctx, func(st *state) error {
		for _, a := range st.applications {
			if f.Status != nil && a.Status != *f.Status {
				continue
			}
			if f.AdopterID != 0 && a.AdopterID != f.AdopterID {
				continue
			}
			if f.AnimalID != 0 && a.AnimalID != f.AnimalID {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	total := len(out)
	return page(out, f.Limit, f.Offset), total, nil
}
