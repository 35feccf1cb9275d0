package applications_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"animal-sanctuary/internal/adapters/storage/memory"
	"animal-sanctuary/internal/domain/adopters"
	"animal-sanctuary/internal/domain/animals"
	"animal-sanctuary/internal/domain/applications"
	"animal-sanctuary/internal/domain/audit"
	"animal-sanctuary/internal/domain/habitats"
	"animal-sanctuary/internal/platform/apperr"
	"animal-sanctuary/internal/platform/logger"
	"animal-sanctuary/internal/platform/metrics"
	"animal-sanctuary/internal/platform/pagination"
	"animal-sanctuary/internal/ports/auth"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	staff  = auth.Actor{Type: auth.ActorStaff, ID: "s1", Origin: "10.0.0.1"}
	public = auth.PublicActor("203.0.113.5")
)

type fixture struct {
	store    *memory.Store
	metrics  *metrics.Metrics
	recorder *audit.AsyncRecorder
	animals  *animals.Service
	adopters *adopters.Service
	svc      *applications.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.New()
	rec := audit.NewRecorder(store.Audit(), logger.Nop(), audit.WithMetrics(m))
	hab := habitats.NewService(store.Habitats(), m)
	an := animals.NewService(store.Animals(), hab, store, rec, animals.Options{})
	ad := adopters.NewService(store.Adopters(), store, rec)
	return &fixture{
		store:    store,
		metrics:  m,
		recorder: rec,
		animals:  an,
		adopters: ad,
		svc:      applications.NewService(store.Applications(), an, ad, store, rec, m),
	}
}

func (f *fixture) animal(t *testing.T, status string) animals.Animal {
	t.Helper()
	age := 2
	a, err := f.animals.Create(context.Background(), staff, animals.CreateInput{
		Name: "Toby", Species: "Dog", Breed: "Beagle", Age: &age, Gender: "Male", AdoptionStatus: status,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) adopter(t *testing.T, first string) adopters.Adopter {
	t.Helper()
	a, err := f.adopters.Create(context.Background(), public, adopterInput(first))
	require.NoError(t, err)
	return a
}

func adopterInput(first string) adopters.CreateInput {
	return adopters.CreateInput{FirstName: first, LastName: "Gómez", Email: first + "@example.com", Phone: "555-0199"}
}

func (f *fixture) status(t *testing.T, id int64) applications.Status {
	t.Helper()
	a, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.Status
}

// seedSiblings carga dos solicitudes activas para el mismo animal, como las que
// pueden existir en datos importados.
func (f *fixture) seedSiblings(t *testing.T) (animals.Animal, applications.Application, applications.Application) {
	t.Helper()
	x := f.animal(t, "Available")
	ad1 := f.adopter(t, "Ana")
	ad2 := f.adopter(t, "Beto")
	now := time.Now().UTC()
	a := applications.Application{ID: 100, AdopterID: ad1.ID, AnimalID: x.ID, Status: applications.StatusSubmitted, ApplicationDate: now, CreatedAt: now}
	b := applications.Application{ID: 101, AdopterID: ad2.ID, AnimalID: x.ID, Status: applications.StatusUnderReview, ApplicationDate: now, CreatedAt: now}
	f.store.Load(memory.Fixtures{Applications: []applications.Application{a, b}})
	return x, a, b
}

func TestSubmit_CreatesSubmittedApplication(t *testing.T) {
	f := newFixture(t)
	x := f.animal(t, "Available")
	ad := f.adopter(t, "Ana")

	app, err := f.svc.Submit(context.Background(), public, applications.SubmitInput{
		AdopterID:         ad.ID,
		AnimalID:          x.ID,
		ReasonForAdoption: "  big garden  ",
	})
	require.NoError(t, err)
	assert.Equal(t, applications.StatusSubmitted, app.Status)
	assert.Equal(t, "big garden", app.ReasonForAdoption)
	assert.Nil(t, app.ApprovalDate)

	// El animal no cambia al enviar.
	got, err := f.animals.GetByID(context.Background(), x.ID)
	require.NoError(t, err)
	assert.Equal(t, animals.StatusAvailable, got.AdoptionStatus)
}

func TestSubmit_SecondActiveApplicationConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")

	_, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Beto").ID, AnimalID: x.ID})
	assert.ErrorIs(t, err, applications.ErrActiveApplicationExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSubmit_RejectsUnavailableOrUnknownAnimals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.adopter(t, "Ana")

	hold := f.animal(t, "Medical Hold")
	_, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: ad.ID, AnimalID: hold.ID})
	assert.ErrorIs(t, err, applications.ErrAnimalNotAvailable)

	retired := f.animal(t, "Available")
	require.NoError(t, f.animals.SoftDelete(ctx, staff, retired.ID))
	_, err = f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: ad.ID, AnimalID: retired.ID})
	assert.ErrorIs(t, err, applications.ErrUnknownAnimal)

	_, err = f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: ad.ID, AnimalID: 9999})
	assert.ErrorIs(t, err, applications.ErrUnknownAnimal)

	x := f.animal(t, "Available")
	_, err = f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: 9999, AnimalID: x.ID})
	assert.ErrorIs(t, err, applications.ErrUnknownAdopter)
}

func TestSubmit_InlineAdopter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")

	in := adopterInput("Carla")
	app, err := f.svc.Submit(ctx, public, applications.SubmitInput{Adopter: &in, AnimalID: x.ID})
	require.NoError(t, err)

	ad, err := f.adopters.GetByID(ctx, app.AdopterID)
	require.NoError(t, err)
	assert.Equal(t, "Carla", ad.FirstName)

	f.recorder.Flush()
	entries, _, err := f.store.Audit().List(ctx, audit.ListFilter{Table: audit.TableAdopters, RecordID: ad.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmit_InlineAdopterRolledBackWhenAnimalTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	_, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	in := adopterInput("Dora")
	_, err = f.svc.Submit(ctx, public, applications.SubmitInput{Adopter: &in, AnimalID: x.ID})
	require.ErrorIs(t, err, applications.ErrActiveApplicationExists)

	_, total, err := f.adopters.List(ctx, "dora", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmit_InputValidation(t *testing.T) {
	f := newFixture(t)
	in := adopterInput("Eva")

	_, err := f.svc.Submit(context.Background(), public, applications.SubmitInput{AnimalID: 1})
	assert.ErrorIs(t, err, applications.ErrInvalidInput)
	_, err = f.svc.Submit(context.Background(), public, applications.SubmitInput{AnimalID: 1, AdopterID: 1, Adopter: &in})
	assert.ErrorIs(t, err, applications.ErrInvalidInput)
	_, err = f.svc.Submit(context.Background(), public, applications.SubmitInput{AdopterID: 1})
	assert.ErrorIs(t, err, applications.ErrInvalidInput)
}

func TestUpdateStatus_IllegalTransitionLeavesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	app, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Withdrawn"})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Under Review"})
	assert.ErrorIs(t, err, applications.ErrIllegalTransition)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
	assert.Equal(t, applications.StatusWithdrawn, f.status(t, app.ID))

	_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Lost"})
	assert.ErrorIs(t, err, applications.ErrInvalidInput)

	_, err = f.svc.UpdateStatus(ctx, staff, 9999, applications.StatusInput{Status: "Approved"})
	assert.ErrorIs(t, err, applications.ErrNotFound)
}

func TestUpdateStatus_RejectRequiresReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	app, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Rejected", Reason: "  "})
	assert.ErrorIs(t, err, applications.ErrReasonRequired)
	assert.Equal(t, applications.StatusSubmitted, f.status(t, app.ID))

	rej, err := f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Rejected", Reason: "no yard"})
	require.NoError(t, err)
	assert.Equal(t, "no yard", rej.RejectionReason)
	assert.Nil(t, rej.ApprovalDate)

	// Rechazar no toca al animal.
	got, _ := f.animals.GetByID(ctx, x.ID)
	assert.Equal(t, animals.StatusAvailable, got.AdoptionStatus)
}

func TestRetireAnimal_RefusedWhileApplicationOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	app, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	err = f.animals.SoftDelete(ctx, staff, x.ID)
	assert.ErrorIs(t, err, animals.ErrOpenApplications)
	assert.Equal(t, 409, apperr.HTTPStatus(err))

	// El animal sigue activo y la solicitud se puede aprobar.
	_, err = f.animals.GetByID(ctx, x.ID)
	require.NoError(t, err)
	stats, err := f.store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingApplications)

	_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Rejected", Reason: "animal leaving the sanctuary"})
	require.NoError(t, err)
	require.NoError(t, f.animals.SoftDelete(ctx, staff, x.ID))

	stats, err = f.store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingApplications)
	assert.Equal(t, 0, stats.TotalAnimals)
}

func TestUpdateStatus_ApprovalAdoptsAnimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	app, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	for _, st := range []string{"Under Review", "Interview Scheduled", "Approved"} {
		_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: st})
		require.NoError(t, err, st)
	}

	got, err := f.svc.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, applications.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovalDate)

	animal, err := f.animals.GetByID(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, animals.StatusAdopted, animal.AdoptionStatus)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Transitions("Approved", "staff")))

	f.recorder.Flush()
	entries, _, err := f.store.Audit().List(ctx, audit.ListFilter{Table: audit.TableAnimals, RecordID: x.ID})
	require.NoError(t, err)
	assert.Len(t, entries, 2) // insert + adopted
}

func TestUpdateStatus_ApprovalAutoRejectsSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x, a, b := f.seedSiblings(t)

	_, err := f.svc.UpdateStatus(ctx, staff, a.ID, applications.StatusInput{Status: "Approved"})
	require.NoError(t, err)

	sib, err := f.svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, applications.StatusRejected, sib.Status)
	assert.Equal(t, applications.AutoRejectReason, sib.RejectionReason)

	animal, _ := f.animals.GetByID(ctx, x.ID)
	assert.Equal(t, animals.StatusAdopted, animal.AdoptionStatus)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Transitions("Rejected", "auto")))
}

func TestUpdateStatus_ConcurrentApprovalsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	_, a, b := f.seedSiblings(t)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, id := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = f.svc.UpdateStatus(context.Background(), staff, id, applications.StatusInput{Status: "Approved"})
		}(i, id)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	statuses := []applications.Status{f.status(t, a.ID), f.status(t, b.ID)}
	assert.ElementsMatch(t, []applications.Status{applications.StatusApproved, applications.StatusRejected}, statuses)
}

func TestUpdateStatus_CannotApproveAdoptedAnimal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	ad := f.adopter(t, "Ana")

	// Animal ya adoptado con una solicitud vieja todavía abierta (dato importado).
	require.NoError(t, f.store.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := f.animals.Lock(ctx, x.ID)
		if err != nil {
			return err
		}
		_, err = f.animals.MarkAdopted(ctx, locked)
		return err
	}))
	now := time.Now().UTC()
	f.store.Load(memory.Fixtures{Applications: []applications.Application{
		{ID: 50, AdopterID: ad.ID, AnimalID: x.ID, Status: applications.StatusInterviewScheduled, CreatedAt: now},
	}})

	_, err := f.svc.UpdateStatus(ctx, staff, 50, applications.StatusInput{Status: "Approved"})
	assert.ErrorIs(t, err, applications.ErrAlreadyAdopted)
	assert.Equal(t, applications.StatusInterviewScheduled, f.status(t, 50))
}

func TestUpdateDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.animal(t, "Available")
	app, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: f.adopter(t, "Ana").ID, AnimalID: x.ID})
	require.NoError(t, err)

	day := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	up, err := f.svc.UpdateDetails(ctx, staff, app.ID, applications.DetailsInput{InterviewDate: &day})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), *up.InterviewDate)

	_, err = f.svc.UpdateStatus(ctx, staff, app.ID, applications.StatusInput{Status: "Withdrawn"})
	require.NoError(t, err)

	notes := "called back"
	up, err = f.svc.UpdateDetails(ctx, staff, app.ID, applications.DetailsInput{StaffNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "called back", up.StaffNotes)

	_, err = f.svc.UpdateDetails(ctx, staff, app.ID, applications.DetailsInput{InterviewDate: &day})
	assert.ErrorIs(t, err, applications.ErrTerminal)
}

func TestListAndSummaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ad := f.adopter(t, "Ana")

	for i := 0; i < 3; i++ {
		x := f.animal(t, "Available")
		_, err := f.svc.Submit(ctx, public, applications.SubmitInput{AdopterID: ad.ID, AnimalID: x.ID})
		require.NoError(t, err)
	}

	items, total, err := f.svc.List(ctx, applications.ListInput{Status: "Submitted", AdopterID: ad.ID, Page: pagination.Params{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)

	_, _, err = f.svc.List(ctx, applications.ListInput{Status: "Pending"})
	assert.ErrorIs(t, err, applications.ErrInvalidInput)

	sums, err := f.svc.SummariesForAdopter(ctx, ad.ID)
	require.NoError(t, err)
	assert.Len(t, sums, 3)
	assert.Equal(t, "Submitted", sums[0].Status)
}

func TestSubmit_AuditFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t)
	x := f.animal(t, "Available")
	ad := f.adopter(t, "Ana")
	f.recorder.Flush()
	f.store.FailAuditWrites(errors.New("audit down"))

	app, err := f.svc.Submit(context.Background(), public, applications.SubmitInput{AdopterID: ad.ID, AnimalID: x.ID})
	require.NoError(t, err)
	f.recorder.Flush()

	assert.Equal(t, applications.StatusSubmitted, f.status(t, app.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuditWrites(string(audit.TableApplications), "error")))
}
