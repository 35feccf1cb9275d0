package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/metrics"
	"animal-sanctuary/internal/ports/auth"

	"github.com/google/uuid"
)

// Recorder registra una mutación ya confirmada. Nunca devuelve error:
// una falla del activity log no puede afectar la operación principal.
type Recorder interface {
	Record(actor auth.Actor, table Table, recordID int64, action Action, before, after any)
}

const DefaultTimeout = 5 * time.Second

// AsyncRecorder escribe cada entrada en su propia goroutine, con su propio contexto
// (no el del request) y fuera de la transacción de negocio.
// Las fallas se loguean y se cuentan en sanctuary_audit_writes_total{result="error"}.
type AsyncRecorder struct {
	repo    Repository
	log     logger.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*AsyncRecorder)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *AsyncRecorder) { r.metrics = m }
}

func WithTimeout(d time.Duration) Option {
	return func(r *AsyncRecorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *AsyncRecorder) { r.now = now }
}

func NewRecorder(repo Repository, log logger.Logger, opts ...Option) *AsyncRecorder {
	if log == nil {
		log = logger.Nop()
	}
	r := &AsyncRecorder{
		repo:    repo,
		log:     log,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *AsyncRecorder) Record(actor auth.Actor, table Table, recordID int64, action Action, before, after any) {
	fields := map[string]any{
		"table":     string(table),
		"record_id": recordID,
		"action":    string(action),
	}

	e := Entry{
		EventID:   uuid.NewString(),
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		ActorType: actor.Type,
		ActorID:   actor.ID,
		Origin:    actor.Origin,
		Timestamp: r.now().UTC(),
	}

	// El snapshot se serializa acá, en la goroutine del caller: después el valor puede cambiar.
	var err error
	if e.Before, err = snapshot(before); err != nil {
		r.fail("audit snapshot failed", fields, err)
		return
	}
	if e.After, err = snapshot(after); err != nil {
		r.fail("audit snapshot failed", fields, err)
		return
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.fail("audit recorder closed, entry dropped", fields, nil)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.write(e, fields)
}

func (r *AsyncRecorder) write(e Entry, fields map[string]any) {
	defer r.wg.Done()
	defer func() {
		if rec := recover(); rec != nil {
			fields["panic"] = rec
			r.fail("audit write panicked", fields, nil)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.repo.Append(ctx, e); err != nil {
		r.fail("audit write failed", fields, err)
		return
	}
	r.metrics.AuditWritten(string(e.TableName))
}

func (r *AsyncRecorder) fail(msg string, fields map[string]any, err error) {
	if err != nil {
		fields["err"] = err
	}
	r.log.Error(msg, fields)
	if t, ok := fields["table"].(string); ok {
		r.metrics.AuditFailed(t)
	}
}

// Flush espera las escrituras pendientes (tests y shutdown).
func (r *AsyncRecorder) Flush() {
	r.wg.Wait()
}

// Close deja de aceptar entradas y espera las pendientes hasta que ctx venza.
func (r *AsyncRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
