package animals_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"animal-sanctuary/internal/adapters/storage/memory"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/metrics"
	"animal-sanctuary/internal/ports/auth"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	metrics  *metrics.Metrics
	recorder *audit.AsyncRecorder
	habitats *habitats.Service
	svc      *animals.Service
}

func newFixture(t *testing.T, opts animals.Options) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	rec := audit.NewRecorder(store.Audit(), logger.Nop(), audit.WithMetrics(m))
	hab := habitats.NewService(store.Habitats(), m)
	return &fixture{
		store:    store,
		metrics:  m,
		recorder: rec,
		habitats: hab,
		svc:      animals.NewService(store.Animals(), hab, store, rec, opts),
	}
}

var staff = auth.Actor{Type: auth.ActorStaff, ID: "s1", Origin: "10.0.0.1"}

func intPtr(v int) *int       { return &v }
func idPtr(v int64) *int64    { return &v }
func strPtr(v string) *string { return &v }

func validInput() animals.CreateInput {
	return animals.CreateInput{
		Name:    "Luna",
		Species: "Dog",
		Breed:   "Mixed",
		Age:     intPtr(3),
		Gender:  "female",
	}
}

func (f *fixture) habitat(t *testing.T, capacity int) habitats.Habitat {
	t.Helper()
	h, err := f.habitats.Create(context.Background(), habitats.CreateInput{Name: "Barn", Type: "indoor", Capacity: capacity})
	require.NoError(t, err)
	return h
}

func (f *fixture) occupancy(t *testing.T, id int64) int {
	t.Helper()
	h, err := f.habitats.GetByID(context.Background(), id)
	require.NoError(t, err)
	return h.CurrentOccupancy
}

func (f *fixture) auditEntries(t *testing.T, id int64) []audit.Entry {
	t.Helper()
	f.recorder.Flush()
	items, _, err := f.store.Audit().List(context.Background(), audit.ListFilter{Table: audit.TableAnimals, RecordID: id})
	require.NoError(t, err)
	return items
}

func TestCreate_DefaultsAndAudit(t *testing.T) {
	f := newFixture(t, animals.Options{})

	a, err := f.svc.Create(context.Background(), staff, validInput())
	require.NoError(t, err)
	assert.Equal(t, animals.StatusAvailable, a.AdoptionStatus)
	assert.Equal(t, animals.GenderFemale, a.Gender)
	assert.True(t, a.IsActive())
	assert.False(t, a.ArrivalDate.IsZero())

	entries := f.auditEntries(t, a.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionInsert, entries[0].Action)
	assert.Equal(t, auth.ActorStaff, entries[0].ActorType)
	assert.Equal(t, "10.0.0.1", entries[0].Origin)
	assert.Nil(t, entries[0].Before)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()

	cases := map[string]func(in *animals.CreateInput){
		"missing name":   func(in *animals.CreateInput) { in.Name = " " },
		"missing age":    func(in *animals.CreateInput) { in.Age = nil },
		"negative age":   func(in *animals.CreateInput) { in.Age = intPtr(-1) },
		"bad gender":     func(in *animals.CreateInput) { in.Gender = "robot" },
		"negative fee":   func(in *animals.CreateInput) { fee := -5.0; in.AdoptionFee = &fee },
		"unknown status": func(in *animals.CreateInput) { in.AdoptionStatus = "Lost" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := f.svc.Create(ctx, staff, in)
			assert.ErrorIs(t, err, animals.ErrInvalidInput)
		})
	}

	in := validInput()
	in.AdoptionStatus = "Adopted"
	_, err := f.svc.Create(ctx, staff, in)
	assert.ErrorIs(t, err, animals.ErrAdoptedViaApproval)
}

func TestCreate_DuplicateMicrochipLeavesNoPartialRecord(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()
	h := f.habitat(t, 5)

	in := validInput()
	in.MicrochipNumber = "985112345678901"
	in.HabitatID = idPtr(h.ID)
	_, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)

	in.Name = "Copycat"
	_, err = f.svc.Create(ctx, staff, in)
	assert.ErrorIs(t, err, animals.ErrDuplicateMicrochip)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, total, err := f.svc.List(ctx, animals.ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, f.occupancy(t, h.ID))
}

func TestCreate_HabitatCapacity(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()
	h := f.habitat(t, 1)

	in := validInput()
	in.HabitatID = idPtr(h.ID)
	_, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, staff, in)
	assert.ErrorIs(t, err, habitats.ErrAtCapacity)
	assert.Equal(t, 1, f.occupancy(t, h.ID))
	assert.Equal(t, 1.0, testCounter(f.metrics.CapacityRejections()))

	in.HabitatID = idPtr(404)
	_, err = f.svc.Create(ctx, staff, in)
	assert.ErrorIs(t, err, habitats.ErrInvalidRef)
}

func TestCreate_ConcurrentAdmitsRespectCapacity(t *testing.T) {
	f := newFixture(t, animals.Options{})
	h := f.habitat(t, 3)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := validInput()
			in.HabitatID = idPtr(h.ID)
			if _, err := f.svc.Create(context.Background(), staff, in); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, 3, f.occupancy(t, h.ID))
}

func TestUpdate_MovesBetweenHabitats(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()
	from := f.habitat(t, 2)
	to := f.habitat(t, 1)

	in := validInput()
	in.HabitatID = idPtr(from.ID)
	a, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)

	moved, err := f.svc.Update(ctx, staff, a.ID, animals.UpdateInput{
		HabitatID: animals.OptionalID{Present: true, Value: idPtr(to.ID)},
	})
	require.NoError(t, err)
	assert.Equal(t, to.ID, *moved.HabitatID)
	assert.Equal(t, 0, f.occupancy(t, from.ID))
	assert.Equal(t, 1, f.occupancy(t, to.ID))

	// Destino lleno: nada cambia.
	b, err := f.svc.Create(ctx, staff, animals.CreateInput{Name: "Max", Species: "Cat", Breed: "Tabby", Age: intPtr(1), Gender: "Male", HabitatID: idPtr(from.ID)})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, staff, b.ID, animals.UpdateInput{
		HabitatID: animals.OptionalID{Present: true, Value: idPtr(to.ID)},
	})
	assert.ErrorIs(t, err, habitats.ErrAtCapacity)
	assert.Equal(t, 1, f.occupancy(t, from.ID))
	assert.Equal(t, 1, f.occupancy(t, to.ID))

	// null = sacar del hábitat.
	out, err := f.svc.Update(ctx, staff, a.ID, animals.UpdateInput{HabitatID: animals.OptionalID{Present: true}})
	require.NoError(t, err)
	assert.Nil(t, out.HabitatID)
	assert.Equal(t, 0, f.occupancy(t, to.ID))
}

func TestOptionalID_UnmarshalJSON(t *testing.T) {
	type body struct {
		HabitatID animals.OptionalID `json:"habitat_id"`
	}
	cases := map[string]struct {
		raw     string
		present bool
		value   *int64
	}{
		"absent":  {raw: `{}`, present: false},
		"null":    {raw: `{"habitat_id": null}`, present: true},
		"numeric": {raw: `{"habitat_id": 7}`, present: true, value: idPtr(7)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var b body
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &b))
			assert.Equal(t, tc.present, b.HabitatID.Present)
			assert.Equal(t, tc.value, b.HabitatID.Value)
		})
	}

	var b body
	assert.Error(t, json.Unmarshal([]byte(`{"habitat_id": "seven"}`), &b))
}

func TestUpdate_StatusGuards(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()
	a, err := f.svc.Create(ctx, staff, validInput())
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, staff, a.ID, animals.UpdateInput{AdoptionStatus: strPtr("Adopted")})
	assert.ErrorIs(t, err, animals.ErrAdoptedViaApproval)

	hold, err := f.svc.Update(ctx, staff, a.ID, animals.UpdateInput{AdoptionStatus: strPtr("Medical Hold")})
	require.NoError(t, err)
	assert.Equal(t, animals.StatusMedicalHold, hold.AdoptionStatus)

	// Adopted solo vía MarkAdopted; después queda fijo.
	require.NoError(t, f.store.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := f.svc.Lock(ctx, a.ID)
		if err != nil {
			return err
		}
		_, err = f.svc.MarkAdopted(ctx, locked)
		return err
	}))
	_, err = f.svc.Update(ctx, staff, a.ID, animals.UpdateInput{AdoptionStatus: strPtr("Available")})
	assert.ErrorIs(t, err, animals.ErrStatusLocked)

	entries := f.auditEntries(t, a.ID)
	assert.Len(t, entries, 2) // insert + update; MarkAdopted lo registra el caller
}

func TestSoftDelete_KeepsOccupancyByDefault(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()
	h := f.habitat(t, 2)

	in := validInput()
	in.HabitatID = idPtr(h.ID)
	a, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDelete(ctx, staff, a.ID))
	assert.Equal(t, 1, f.occupancy(t, h.ID))

	_, err = f.svc.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, animals.ErrNotFound)
	assert.ErrorIs(t, f.svc.SoftDelete(ctx, staff, a.ID), animals.ErrNotFound)

	_, err = f.svc.Update(ctx, staff, a.ID, animals.UpdateInput{Name: strPtr("Zombie")})
	assert.ErrorIs(t, err, animals.ErrNotFound)

	entries := f.auditEntries(t, a.ID)
	require.Len(t, entries, 2)
	actions := []audit.Action{entries[0].Action, entries[1].Action}
	assert.ElementsMatch(t, []audit.Action{audit.ActionInsert, audit.ActionDelete}, actions)
}

func TestSoftDelete_ReleasesHabitatWhenConfigured(t *testing.T) {
	f := newFixture(t, animals.Options{ReleaseHabitatOnRetire: true})
	ctx := context.Background()
	h := f.habitat(t, 1)

	in := validInput()
	in.HabitatID = idPtr(h.ID)
	a, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)

	require.NoError(t, f.svc.SoftDelete(ctx, staff, a.ID))
	assert.Equal(t, 0, f.occupancy(t, h.ID))

	// El lugar quedó libre.
	_, err = f.svc.Create(ctx, staff, in)
	assert.NoError(t, err)
}

func TestList_NeverReturnsRetired(t *testing.T) {
	f := newFixture(t, animals.Options{})
	ctx := context.Background()
	h := f.habitat(t, 5)

	in := validInput()
	in.HabitatID = idPtr(h.ID)
	keep, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)
	gone, err := f.svc.Create(ctx, staff, in)
	require.NoError(t, err)
	require.NoError(t, f.svc.SoftDelete(ctx, staff, gone.ID))

	filters := []animals.ListInput{
		{},
		{Status: "Available"},
		{Species: "dog"},
		{HabitatID: idPtr(h.ID)},
		{AvailableOnly: true, Sort: "age", Order: "desc"},
	}
	for _, in := range filters {
		items, total, err := f.svc.List(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, keep.ID, items[0].ID)
	}

	_, _, err = f.svc.List(ctx, animals.ListInput{Status: "Lost"})
	assert.ErrorIs(t, err, animals.ErrInvalidInput)
}

func TestCreate_AuditFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t, animals.Options{})
	f.store.FailAuditWrites(errors.New("audit table locked"))

	a, err := f.svc.Create(context.Background(), staff, validInput())
	require.NoError(t, err)
	f.recorder.Flush()

	got, err := f.svc.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna", got.Name)
	assert.Equal(t, 1.0, testCounter(f.metrics.AuditWrites(string(audit.TableAnimals), "error")))
}

func testCounter(c prometheus.Counter) float64 {
	return testutil.ToFloat64(c)
}
