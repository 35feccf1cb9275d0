package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"animal-sanctuary/internal/domain/applications"
)

type ApplicationsRepo struct {
	s *Store
}

const applicationColumns = `
	application_id, adopter_id, animal_id, application_date, status,
	reason_for_adoption, living_arrangement, applicant_references, work_schedule, plan_for_pet_care,
	preferred_adoption_date, monthly_budget, interview_date, staff_notes,
	approval_date, rejection_reason, created_at, updated_at`

// activeStatuses es la lista SQL de estados no terminales. Son constantes del dominio, no input.
var activeStatuses = func() string {
	quoted := make([]string, 0, 3)
	for _, st := range applications.ActiveStatuses() {
		quoted = append(quoted, "'"+string(st)+"'")
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}()

func scanApplication(sc interface{ Scan(...any) error }) (applications.Application, error) {
	var (
		a                              applications.Application
		status                         string
		preferred, interview, approval sql.NullTime
		budget                         sql.NullFloat64
	)
	err := sc.Scan(
		&a.ID, &a.AdopterID, &a.AnimalID, &a.ApplicationDate, &status,
		&a.ReasonForAdoption, &a.LivingArrangement, &a.References, &a.WorkSchedule, &a.PlanForPetCare,
		&preferred, &budget, &interview, &a.StaffNotes,
		&approval, &a.RejectionReason, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Status = applications.Status(status)
	a.PreferredAdoptionDate = fromNullTime(preferred)
	a.MonthlyBudget = fromNullFloat(budget)
	a.InterviewDate = fromNullTime(interview)
	a.ApprovalDate = fromNullTime(approval)
	return a, err
}

func (r *ApplicationsRepo) Create(ctx context.Context, a applications.Application) (applications.Application, error) {
	row := r.s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO adoption_applications (
			adopter_id, animal_id, application_date, status,
			reason_for_adoption, living_arrangement, applicant_references, work_schedule, plan_for_pet_care,
			preferred_adoption_date, monthly_budget, interview_date, staff_notes,
			approval_date, rejection_reason, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING `+applicationColumns,
		a.AdopterID, a.AnimalID, a.ApplicationDate, string(a.Status),
		a.ReasonForAdoption, a.LivingArrangement, a.References, a.WorkSchedule, a.PlanForPetCare,
		toNullTime(a.PreferredAdoptionDate), toNullFloat(a.MonthlyBudget), toNullTime(a.InterviewDate), a.StaffNotes,
		toNullTime(a.ApprovalDate), a.RejectionReason, a.CreatedAt, a.UpdatedAt,
	)
	out, err := scanApplication(row)
	if err != nil {
		if c, ok := constraintViolation(err, codeUniqueViolation); ok && c == "adoption_applications_active_uq" {
			return applications.Application{}, applications.ErrActiveApplicationExists
		}
		return applications.Application{}, err
	}
	return out, nil
}

func (r *ApplicationsRepo) get(ctx context.Context, id int64, lock bool) (applications.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM adoption_applications WHERE application_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	a, err := scanApplication(r.s.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return applications.Application{}, applications.ErrNotFound
	}
	return a, err
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id int64) (applications.Application, error) {
	return r.get(ctx, id, false)
}

func (r *ApplicationsRepo) GetForUpdate(ctx context.Context, id int64) (applications.Application, error) {
	return r.get(ctx, id, true)
}

// UpdateStatus: el WHERE status = from es el compare-and-set.
func (r *ApplicationsRepo) UpdateStatus(ctx context.Context, a applications.Application, from applications.Status) error {
	res, err := r.s.q(ctx).ExecContext(ctx, `
		UPDATE adoption_applications
		SET status = $3, approval_date = $4, rejection_reason = $5, updated_at = $6
		WHERE application_id = $1 AND status = $2
	`, a.ID, string(from), string(a.Status), toNullTime(a.ApprovalDate), a.RejectionReason, a.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, a.ID); err != nil {
		return err
	}
	return applications.ErrStaleStatus
}

func (r *ApplicationsRepo) UpdateDetails(ctx context.Context, a applications.Application) error {
	res, err := r.s.q(ctx).ExecContext(ctx, `
		UPDATE adoption_applications
		SET staff_notes = $2, interview_date = $3, updated_at = $4
		WHERE application_id = $1
	`, a.ID, a.StaffNotes, toNullTime(a.InterviewDate), a.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return applications.ErrNotFound
	}
	return nil
}

func (r *ApplicationsRepo) ListActiveByAnimal(ctx context.Context, animalID int64) ([]applications.Application, error) {
	rows, err := r.s.q(ctx).QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE animal_id = $1 AND status IN `+activeStatuses+`
		ORDER BY application_id
		FOR UPDATE
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ApplicationsRepo) List(ctx context.Context, f applications.ListFilter) ([]applications.Application, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != nil {
		where = append(where, "status = "+arg(string(*f.Status)))
	}
	if f.AdopterID != 0 {
		where = append(where, "adopter_id = "+arg(f.AdopterID))
	}
	if f.AnimalID != 0 {
		where = append(where, "animal_id = "+arg(f.AnimalID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.s.q(ctx).QueryRowContext(ctx, `SELECT count(*) FROM adoption_applications WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + applicationColumns + ` FROM adoption_applications WHERE ` + cond +
		` ORDER BY created_at DESC, application_id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)
	}

	rows, err := r.s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}
