package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/ports/auth"
)

// AuditRepo escribe siempre contra el pool, nunca dentro de una transacción de negocio.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func jsonArg(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO activity_log (
			event_id, table_name, record_id, action,
			actor_type, actor_id, origin, before_data, after_data, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING log_id
	`,
		e.EventID, string(e.TableName), e.RecordID, string(e.Action),
		string(e.ActorType), e.ActorID, e.Origin, jsonArg(e.Before), jsonArg(e.After), e.Timestamp,
	).Scan(&e.ID)
	if err != nil {
		return audit.Entry{}, err
	}
	return e, nil
}

func (r *AuditRepo) List(ctx context.Context, f audit.ListFilter) ([]audit.Entry, int, error) {
	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Table != "" {
		where = append(where, "table_name = "+arg(string(f.Table)))
	}
	if f.RecordID != 0 {
		where = append(where, "record_id = "+arg(f.RecordID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM activity_log WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT log_id, event_id::text, table_name, record_id, action,
			actor_type, actor_id, origin, before_data, after_data, created_at
		FROM activity_log WHERE ` + cond + ` ORDER BY log_id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			e                        audit.Entry
			table, action, actorType string
			before, after            []byte
		)
		if err := rows.Scan(
			&e.ID, &e.EventID, &table, &e.RecordID, &action,
			&actorType, &e.ActorID, &e.Origin, &before, &after, &e.Timestamp,
		); err != nil {
			return nil, 0, err
		}
		e.TableName = audit.Table(table)
		e.Action = audit.Action(action)
		e.ActorType = auth.ActorType(actorType)
		e.Before = before
		e.After = after
		out = append(out, e)
	}
	return out, total, rows.Err()
}
