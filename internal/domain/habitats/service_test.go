package habitats

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]Habitat
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Habitat{}}
}

func (r *testRepo) Create(_ context.Context, h Habitat) (Habitat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h.ID = r.nextID
	r.byID[h.ID] = h
	return h, nil
}

func (r *testRepo) GetByID(_ context.Context, id int64) (Habitat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	if !ok {
		return Habitat{}, ErrNotFound
	}
	return h, nil
}

func (r *testRepo) List(context.Context) ([]Habitat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Habitat, 0, len(r.byID))
	for _, h := range r.byID {
		out = append(out, h)
	}
	return out, nil
}

func (r *testRepo) IncrementOccupancy(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if !h.HasRoom() {
		return ErrAtCapacity
	}
	h.CurrentOccupancy++
	r.byID[id] = h
	return nil
}

func (r *testRepo) DecrementOccupancy(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if h.CurrentOccupancy > 0 {
		h.CurrentOccupancy--
	}
	r.byID[id] = h
	return nil
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Name: "", Type: "indoor", Capacity: 3},
		{Name: "Barn", Type: "cave", Capacity: 3},
		{Name: "Barn", Type: "outdoor", Capacity: 0},
	} {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}

	h, err := svc.Create(ctx, CreateInput{Name: " Cat Room ", Type: "Indoor", Capacity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Cat Room", h.Name)
	assert.Equal(t, TypeIndoor, h.Type)
	assert.Zero(t, h.CurrentOccupancy)
}

func TestAdmit_UnknownHabitatIsValidationError(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	err := svc.Admit(context.Background(), 99)
	assert.ErrorIs(t, err, ErrInvalidRef)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAdmit_AtCapacityFailsAndCounts(t *testing.T) {
	m := metrics.New()
	svc := NewService(newTestRepo(), m)
	ctx := context.Background()

	h, err := svc.Create(ctx, CreateInput{Name: "Kennel", Type: "indoor", Capacity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Admit(ctx, h.ID))
	ok, err := svc.CheckCapacity(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Admit(ctx, h.ID)
	assert.ErrorIs(t, err, ErrAtCapacity)
	assert.Equal(t, apperr.KindRule, apperr.KindOf(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CapacityRejections()))

	got, _ := svc.GetByID(ctx, h.ID)
	assert.Equal(t, 1, got.CurrentOccupancy)
}

func TestAdmit_ConcurrentNeverExceedsCapacity(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	h, err := svc.Create(ctx, CreateInput{Name: "Aviary", Type: "outdoor", Capacity: 5})
	require.NoError(t, err)
	// capacity-1
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Admit(ctx, h.ID))
	}

	var wg sync.WaitGroup
	var admitted, rejected atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Admit(ctx, h.ID)
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, ErrAtCapacity):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, int32(19), rejected.Load())
	got, _ := svc.GetByID(ctx, h.ID)
	assert.Equal(t, 5, got.CurrentOccupancy)
}

func TestRelease_FloorsAtZero(t *testing.T) {
	svc := NewService(newTestRepo(), nil)
	ctx := context.Background()

	h, err := svc.Create(ctx, CreateInput{Name: "Pond", Type: "mixed", Capacity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, h.ID))
	got, _ := svc.GetByID(ctx, h.ID)
	assert.Zero(t, got.CurrentOccupancy)

	assert.ErrorIs(t, svc.Release(ctx, 404), ErrNotFound)
}
