package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"animal-sanctuary/internal/domain/adopters"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/domain/applications"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/platform/health"
)

type txKey struct{}

// Store agrupa los repos sobre un mismo pool. La transacción en curso viaja en el ctx.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB { return s.db }

// WithinTx abre una transacción (o se une a la del ctx) y hace rollback si fn falla.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Habitats() habitats.Repository         { return &HabitatsRepo{s: s} }
func (s *Store) Animals() animals.Repository           { return &AnimalsRepo{s: s} }
func (s *Store) Adopters() adopters.Repository         { return &AdoptersRepo{s: s} }
func (s *Store) Applications() applications.Repository { return &ApplicationsRepo{s: s} }
func (s *Store) Audit() audit.Repository               { return NewAuditRepo(s.db) }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Stats(ctx context.Context) (health.Stats, error) {
	var st health.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM animals WHERE lifecycle = 'active'),
			(SELECT count(*) FROM animals WHERE lifecycle = 'active' AND adoption_status = 'Available'),
			(SELECT count(*) FROM adopters),
			(SELECT count(*) FROM adoption_applications
				WHERE status IN ('Submitted', 'Under Review', 'Interview Scheduled')),
			(SELECT count(*) FROM habitats)
	`).Scan(
		&st.TotalAnimals,
		&st.AvailableAnimals,
		&st.TotalAdopters,
		&st.PendingApplications,
		&st.TotalHabitats,
	)
	return st, err
}
