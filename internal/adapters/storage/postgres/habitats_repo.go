package postgres

import (
	"context"
	"database/sql"
	"errors"

	"animal-sanctuary/internal/domain/habitats"
)

type HabitatsRepo struct {
	s *Store
}

const habitatColumns = `
	habitat_id, habitat_name, habitat_type, capacity, current_occupancy,
	temperature_range, special_features, created_at, updated_at`

func scanHabitat(sc interface{ Scan(...any) error }) (habitats.Habitat, error) {
	var h habitats.Habitat
	var typ string
	err := sc.Scan(
		&h.ID, &h.Name, &typ, &h.Capacity, &h.CurrentOccupancy,
		&h.TemperatureRange, &h.SpecialFeatures, &h.CreatedAt, &h.UpdatedAt,
	)
	h.Type = habitats.Type(typ)
	return h, err
}

func (r *HabitatsRepo) Create(ctx context.Context, h habitats.Habitat) (habitats.Habitat, error) {
	row := r.s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO habitats (
			habitat_name, habitat_type, capacity, current_occupancy,
			temperature_range, special_features, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+habitatColumns,
		h.Name, string(h.Type), h.Capacity, h.CurrentOccupancy,
		h.TemperatureRange, h.SpecialFeatures, h.CreatedAt, h.UpdatedAt,
	)
	return scanHabitat(row)
}

func (r *HabitatsRepo) GetByID(ctx context.Context, id int64) (habitats.Habitat, error) {
	row := r.s.q(ctx).QueryRowContext(ctx, `SELECT `+habitatColumns+` FROM habitats WHERE habitat_id = $1`, id)
	h, err := scanHabitat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return habitats.Habitat{}, habitats.ErrNotFound
	}
	return h, err
}

func (r *HabitatsRepo) List(ctx context.Context) ([]habitats.Habitat, error) {
	rows, err := r.s.q(ctx).QueryContext(ctx, `SELECT `+habitatColumns+` FROM habitats ORDER BY habitat_name, habitat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]habitats.Habitat, 0)
	for rows.Next() {
		h, err := scanHabitat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// IncrementOccupancy: el WHERE es el compare-and-set; dos requests concurrentes
// por el último lugar no pueden pasar ambos.
func (r *HabitatsRepo) IncrementOccupancy(ctx context.Context, id int64) error {
	res, err := r.s.q(ctx).ExecContext(ctx, `
		UPDATE habitats
		SET current_occupancy = current_occupancy + 1, updated_at = now()
		WHERE habitat_id = $1 AND current_occupancy < capacity
	`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	// 0 filas: o no existe o está lleno.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return habitats.ErrAtCapacity
}

func (r *HabitatsRepo) DecrementOccupancy(ctx context.Context, id int64) error {
	res, err := r.s.q(ctx).ExecContext(ctx, `
		UPDATE habitats
		SET current_occupancy = GREATEST(current_occupancy - 1, 0), updated_at = now()
		WHERE habitat_id = $1
	`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return habitats.ErrNotFound
	}
	return nil
}
