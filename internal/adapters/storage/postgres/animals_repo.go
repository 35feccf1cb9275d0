package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"animal-sanctuary/internal/domain/animals"
)

type AnimalsRepo struct {
	s *Store
}

const animalColumns = `
	animal_id, name, species, breed, age, weight_kg, gender, color,
	arrival_date, source, adoption_status, adoption_fee, habitat_id,
	dietary_requirements, behavioral_notes, special_needs, microchip_number,
	lifecycle, created_at, updated_at`

// sortColumns es el allow-list: nunca interpolamos input del cliente.
var sortColumns = map[animals.SortKey]string{
	animals.SortName:           "name",
	animals.SortSpecies:        "species",
	animals.SortAge:            "age",
	animals.SortArrivalDate:    "arrival_date",
	animals.SortAdoptionStatus: "adoption_status",
}

func scanAnimal(sc interface{ Scan(...any) error }) (animals.Animal, error) {
	var (
		a         animals.Animal
		weight    sql.NullFloat64
		habitatID sql.NullInt64
		gender    string
		status    string
		lifecycle string
	)
	err := sc.Scan(
		&a.ID, &a.Name, &a.Species, &a.Breed, &a.Age, &weight, &gender, &a.Color,
		&a.ArrivalDate, &a.Source, &status, &a.AdoptionFee, &habitatID,
		&a.DietaryRequirements, &a.BehavioralNotes, &a.SpecialNeeds, &a.MicrochipNumber,
		&lifecycle, &a.CreatedAt, &a.UpdatedAt,
	)
	a.WeightKg = fromNullFloat(weight)
	a.HabitatID = fromNullInt64(habitatID)
	a.Gender = animals.Gender(gender)
	a.AdoptionStatus = animals.Status(status)
	a.Lifecycle = animals.Lifecycle(lifecycle)
	return a, err
}

func mapAnimalErr(err error) error {
	if c, ok := constraintViolation(err, codeUniqueViolation); ok && c == "animals_microchip_active_uq" {
		return animals.ErrDuplicateMicrochip
	}
	return err
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	row := r.s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO animals (
			name, species, breed, age, weight_kg, gender, color,
			arrival_date, source, adoption_status, adoption_fee, habitat_id,
			dietary_requirements, behavioral_notes, special_needs, microchip_number,
			lifecycle, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING `+animalColumns,
		a.Name, a.Species, a.Breed, a.Age, toNullFloat(a.WeightKg), string(a.Gender), a.Color,
		a.ArrivalDate, a.Source, string(a.AdoptionStatus), a.AdoptionFee, toNullInt64(a.HabitatID),
		a.DietaryRequirements, a.BehavioralNotes, a.SpecialNeeds, a.MicrochipNumber,
		string(a.Lifecycle), a.CreatedAt, a.UpdatedAt,
	)
	out, err := scanAnimal(row)
	if err != nil {
		return animals.Animal{}, mapAnimalErr(err)
	}
	return out, nil
}

func (r *AnimalsRepo) GetActive(ctx context.Context, id int64) (animals.Animal, error) {
	row := r.s.q(ctx).QueryRowContext(ctx,
		`SELECT `+animalColumns+` FROM animals WHERE animal_id = $1 AND lifecycle = 'active'`, id)
	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, err
}

func (r *AnimalsRepo) GetForUpdate(ctx context.Context, id int64) (animals.Animal, error) {
	row := r.s.q(ctx).QueryRowContext(ctx,
		`SELECT `+animalColumns+` FROM animals WHERE animal_id = $1 FOR UPDATE`, id)
	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, err
}

// Update exige lifecycle = 'active' en el WHERE: un update concurrente con el retiro
// no resucita al animal.
func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.s.q(ctx).ExecContext(ctx, `
		UPDATE animals SET
			name = $2, species = $3, breed = $4, age = $5, weight_kg = $6, gender = $7, color = $8,
			arrival_date = $9, source = $10, adoption_status = $11, adoption_fee = $12, habitat_id = $13,
			dietary_requirements = $14, behavioral_notes = $15, special_needs = $16, microchip_number = $17,
			lifecycle = $18, updated_at = $19
		WHERE animal_id = $1 AND lifecycle = 'active'
	`,
		a.ID,
		a.Name, a.Species, a.Breed, a.Age, toNullFloat(a.WeightKg), string(a.Gender), a.Color,
		a.ArrivalDate, a.Source, string(a.AdoptionStatus), a.AdoptionFee, toNullInt64(a.HabitatID),
		a.DietaryRequirements, a.BehavioralNotes, a.SpecialNeeds, a.MicrochipNumber,
		string(a.Lifecycle), a.UpdatedAt,
	)
	if err != nil {
		return mapAnimalErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) MicrochipInUse(ctx context.Context, chip string, excludeID int64) (bool, error) {
	var exists bool
	err := r.s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM animals
			WHERE microchip_number = $1 AND lifecycle = 'active' AND animal_id <> $2
		)
	`, chip, excludeID).Scan(&exists)
	return exists, err
}

func (r *AnimalsRepo) HasOpenApplications(ctx context.Context, animalID int64) (bool, error) {
	var exists bool
	err := r.s.q(ctx).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM adoption_applications
			WHERE animal_id = $1 AND status IN `+activeStatuses+`
		)
	`, animalID).Scan(&exists)
	return exists, err
}

func (r *AnimalsRepo) List(ctx context.Context, f animals.ListFilter) ([]animals.Animal, int, error) {
	where := []string{"lifecycle = 'active'"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.AvailableOnly {
		where = append(where, "adoption_status = 'Available'")
	}
	if f.Status != nil {
		where = append(where, "adoption_status = "+arg(string(*f.Status)))
	}
	if f.Species != "" {
		where = append(where, "lower(species) = lower("+arg(f.Species)+")")
	}
	if f.HabitatID != nil {
		where = append(where, "habitat_id = "+arg(*f.HabitatID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.s.q(ctx).QueryRowContext(ctx, `SELECT count(*) FROM animals WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[f.Sort]
	if !ok {
		col = "name"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	query := `SELECT ` + animalColumns + ` FROM animals WHERE ` + cond +
		` ORDER BY ` + col + ` ` + dir + `, animal_id ` + dir
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)
	}

	rows, err := r.s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
