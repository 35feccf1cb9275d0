package memory

import (
	"context"
	"sync"

	"animal-sanctuary/internal/domain/audit"
)

// auditRepo tiene su propio lock: el activity log se escribe fuera de las transacciones de negocio.
type auditRepo struct {
	mu      sync.RWMutex
	entries []audit.Entry
	next    int64

	// failWith hace fallar Append (tests de "el log no bloquea la operación").
	failWith error
}

func newAuditRepo() *auditRepo {
	return &auditRepo{}
}

func (r *auditRepo) Append(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	if err := ctx.Err(); err != nil {
		return audit.Entry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return audit.Entry{}, r.failWith
	}
	r.next++
	e.ID = r.next
	r.entries = append(r.entries, e)
	return e, nil
}

// List devuelve las entradas más nuevas primero.
func (r *auditRepo) List(ctx context.Context, f audit.ListFilter) ([]audit.Entry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if f.Table != "" && e.TableName != f.Table {
			continue
		}
		if f.RecordID != 0 && e.RecordID != f.RecordID {
			continue
		}
		out = append(out, e)
	}
	total := len(out)
	return page(out, f.Limit, f.Offset), total, nil
}

// FailAuditWrites hace que cada Append devuelva err (nil lo restablece).
func (s *Store) FailAuditWrites(err error) {
	s.audit.mu.Lock()
	s.audit.failWith = err
	s.audit.mu.Unlock()
}
