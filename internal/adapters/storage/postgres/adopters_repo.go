package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"animal-sanctuary/internal/domain/adopters"
)

type AdoptersRepo struct {
	s *Store
}

const adopterColumns = `
	adopter_id, first_name, last_name, email, phone,
	address, city, state, zip_code, date_of_birth, occupation,
	housing_type, housing_owned, has_yard, yard_fenced,
	has_other_pets, other_pets_details, previous_pet_experience,
	personal_references, notes, created_at, updated_at`

func scanAdopter(sc interface{ Scan(...any) error }) (adopters.Adopter, error) {
	var (
		a                              adopters.Adopter
		dob                            sql.NullTime
		owned, yard, fenced, otherPets sql.NullBool
		refs                           []byte
	)
	if err := sc.Scan(
		&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
		&a.Address, &a.City, &a.State, &a.ZipCode, &dob, &a.Occupation,
		&a.HousingType, &owned, &yard, &fenced,
		&otherPets, &a.OtherPetsDetails, &a.PreviousPetExperience,
		&refs, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return adopters.Adopter{}, err
	}
	a.DateOfBirth = fromNullTime(dob)
	a.HousingOwned = fromNullBool(owned)
	a.HasYard = fromNullBool(yard)
	a.YardFenced = fromNullBool(fenced)
	a.HasOtherPets = fromNullBool(otherPets)
	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &a.References); err != nil {
			return adopters.Adopter{}, fmt.Errorf("decode references: %w", err)
		}
	}
	return a, nil
}

func encodeReferences(refs []adopters.Reference) ([]byte, error) {
	if refs == nil {
		refs = []adopters.Reference{}
	}
	return json.Marshal(refs)
}

func (r *AdoptersRepo) Create(ctx context.Context, a adopters.Adopter) (adopters.Adopter, error) {
	refs, err := encodeReferences(a.References)
	if err != nil {
		return adopters.Adopter{}, err
	}
	row := r.s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO adopters (
			first_name, last_name, email, phone,
			address, city, state, zip_code, date_of_birth, occupation,
			housing_type, housing_owned, has_yard, yard_fenced,
			has_other_pets, other_pets_details, previous_pet_experience,
			personal_references, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		RETURNING `+adopterColumns,
		a.FirstName, a.LastName, a.Email, a.Phone,
		a.Address, a.City, a.State, a.ZipCode, toNullTime(a.DateOfBirth), a.Occupation,
		a.HousingType, toNullBool(a.HousingOwned), toNullBool(a.HasYard), toNullBool(a.YardFenced),
		toNullBool(a.HasOtherPets), a.OtherPetsDetails, a.PreviousPetExperience,
		string(refs), a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	return scanAdopter(row)
}

func (r *AdoptersRepo) GetByID(ctx context.Context, id int64) (adopters.Adopter, error) {
	return r.get(ctx, id, false)
}

func (r *AdoptersRepo) GetForUpdate(ctx context.Context, id int64) (adopters.Adopter, error) {
	return r.get(ctx, id, true)
}

func (r *AdoptersRepo) get(ctx context.Context, id int64, lock bool) (adopters.Adopter, error) {
	query := `SELECT ` + adopterColumns + ` FROM adopters WHERE adopter_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	row := r.s.q(ctx).QueryRowContext(ctx, query, id)
	a, err := scanAdopter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return adopters.Adopter{}, adopters.ErrNotFound
	}
	return a, err
}

func (r *AdoptersRepo) Update(ctx context.Context, a adopters.Adopter) error {
	refs, err := encodeReferences(a.References)
	if err != nil {
		return err
	}
	res, err := r.s.q(ctx).ExecContext(ctx, `
		UPDATE adopters SET
			first_name = $2, last_name = $3, email = $4, phone = $5,
			address = $6, city = $7, state = $8, zip_code = $9, date_of_birth = $10, occupation = $11,
			housing_type = $12, housing_owned = $13, has_yard = $14, yard_fenced = $15,
			has_other_pets = $16, other_pets_details = $17, previous_pet_experience = $18,
			personal_references = $19, notes = $20, updated_at = $21
		WHERE adopter_id = $1
	`,
		a.ID,
		a.FirstName, a.LastName, a.Email, a.Phone,
		a.Address, a.City, a.State, a.ZipCode, toNullTime(a.DateOfBirth), a.Occupation,
		a.HousingType, toNullBool(a.HousingOwned), toNullBool(a.HasYard), toNullBool(a.YardFenced),
		toNullBool(a.HasOtherPets), a.OtherPetsDetails, a.PreviousPetExperience,
		string(refs), a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return adopters.ErrNotFound
	}
	return nil
}

func (r *AdoptersRepo) List(ctx context.Context, f adopters.ListFilter) ([]adopters.Adopter, int, error) {
	cond := "TRUE"
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		cond = "(first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1)"
	}

	var total int
	if err := r.s.q(ctx).QueryRowContext(ctx, `SELECT count(*) FROM adopters WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + adopterColumns + ` FROM adopters WHERE ` + cond + ` ORDER BY adopter_id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]adopters.Adopter, 0)
	for rows.Next() {
		a, err := scanAdopter(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
