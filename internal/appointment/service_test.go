package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronocare/chronocare-api/internal/apperr"
	"github.com/chronocare/chronocare-api/internal/identity"
	redisclient "github.com/chronocare/chronocare-api/internal/redis"
)

// fakeLedger is an in-memory Ledger that mirrors the storage contract: active
// slot uniqueness on insert and the CAS refusal on completed rows.
type fakeLedger struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*Appointment
	events []EventLog

	insertErr        error
	conflictOnRetry  *Appointment
	findConflictCall int
	casRefuse        bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{byID: make(map[uuid.UUID]*Appointment)}
}

func (f *fakeLedger) FindConflict(_ context.Context, providerEmail string, at time.Time) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findConflictCall++
	if f.conflictOnRetry != nil && f.findConflictCall > 1 {
		return f.conflictOnRetry, nil
	}
	for _, a := range f.byID {
		if a.ProviderEmail == providerEmail && a.ScheduledAt.Equal(at) && a.Status.Active() {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) Insert(_ context.Context, appt *Appointment) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	for _, a := range f.byID {
		if a.ProviderEmail == appt.ProviderEmail && a.ScheduledAt.Equal(appt.ScheduledAt) && a.Status.Active() {
			return nil, ErrSlotOccupied
		}
	}
	cp := *appt
	cp.ID = uuid.New()
	cp.Status = StatusPlanned
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeLedger) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok || f.casRefuse || a.Status.Terminal() {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (f *fakeLedger) ListByProvider(_ context.Context, providerEmail string) ([]Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Detail
	for _, a := range f.byID {
		if a.ProviderEmail == providerEmail {
			out = append(out, Detail{Appointment: *a})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})
	return out, nil
}

func (f *fakeLedger) ListByPatient(_ context.Context, patientEmail string) ([]Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Detail
	for _, a := range f.byID {
		if a.PatientEmail == patientEmail {
			out = append(out, Detail{Appointment: *a})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (f *fakeLedger) InsertEvent(_ context.Context, ev EventLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeLedger) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.byID {
		if a.Status.Active() {
			n++
		}
	}
	return n
}

// serialLocker always grants the lock but serializes critical sections, so
// concurrent bookings race on the conflict check, not on lock acquisition.
type serialLocker struct {
	mu sync.Mutex
}

func (l *serialLocker) WithSlotLock(ctx context.Context, _ string, _ time.Time, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

// busyLocker simulates a lock already held by another booking.
type busyLocker struct{}

func (busyLocker) WithSlotLock(context.Context, string, time.Time, func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type fakeDirectory struct {
	byID    map[uuid.UUID]*identity.Account
	byEmail map[string]*identity.Account
}

func newFakeDirectory(accounts ...*identity.Account) *fakeDirectory {
	d := &fakeDirectory{
		byID:    make(map[uuid.UUID]*identity.Account),
		byEmail: make(map[string]*identity.Account),
	}
	for _, a := range accounts {
		d.byID[a.ID] = a
		d.byEmail[a.Email] = a
	}
	return d
}

func (d *fakeDirectory) Resolve(_ context.Context, id uuid.UUID) (*identity.Account, error) {
	a, ok := d.byID[id]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	return a, nil
}

func (d *fakeDirectory) ResolveByEmail(_ context.Context, email string) (*identity.Account, error) {
	a, ok := d.byEmail[email]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	return a, nil
}

func testAccounts() (*identity.Account, *identity.Account) {
	phone := "+33612345678"
	spec := "Cardiologie"
	provider := &identity.Account{
		ID:        uuid.New(),
		Role:      identity.RoleHealthPersonnel,
		Email:     "dr.benali@chronocare.test",
		FullName:  "Dr. Amine Benali",
		Specialty: &spec,
	}
	patient := &identity.Account{
		ID:       uuid.New(),
		Role:     identity.RolePatient,
		Email:    "s.mansouri@chronocare.test",
		FullName: "Salma Mansouri",
		Phone:    &phone,
	}
	return provider, patient
}

func newTestService(ledger Ledger, dir Directory, locker redisclient.Locker) *Service {
	return NewService(ledger, dir, locker, zerolog.Nop())
}

func TestCreate_Success(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	detail, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  when,
		VisitType:    "CONSULTATION",
		Remarks:      "first visit",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, detail.Status)
	assert.Equal(t, provider.Email, detail.ProviderEmail)
	assert.Equal(t, patient.Email, detail.PatientEmail)
	assert.True(t, detail.ScheduledAt.Equal(when))
	require.NotNil(t, detail.Patient)
	assert.Equal(t, patient.FullName, detail.Patient.FullName)

	require.Len(t, ledger.events, 1)
	assert.Equal(t, EventAppointmentCreated, ledger.events[0].EventType)
}

func TestCreate_ProviderNotFound(t *testing.T) {
	_, patient := testAccounts()
	svc := newTestService(newFakeLedger(), newFakeDirectory(patient), &serialLocker{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		VisitType:    "CONSULTATION",
		Remarks:      "x",
	})

	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}

func TestCreate_MissingFields(t *testing.T) {
	provider, _ := testAccounts()
	svc := newTestService(newFakeLedger(), newFakeDirectory(provider), &serialLocker{})

	_, err := svc.Create(context.Background(), provider.ID, CreateRequest{})

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"patientEmail", "remarks", "scheduledAt", "visitType"}, verr.Fields)
}

func TestCreate_SlotTaken(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	first, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  when,
		VisitType:    "CONSULTATION",
		Remarks:      "first",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  when,
		VisitType:    "SUIVI",
		Remarks:      "second",
	})

	var taken *SlotTakenError
	require.ErrorAs(t, err, &taken)
	require.NotNil(t, taken.Conflict)
	assert.Equal(t, first.ID, taken.Conflict.ID)
	assert.Equal(t, 1, ledger.activeCount())
}

func TestCreate_CanceledSlotIsFree(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	first, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  when,
		VisitType:    "CONSULTATION",
		Remarks:      "first",
	})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), first.ID, StatusCanceled)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  when,
		VisitType:    "CONSULTATION",
		Remarks:      "rebooked",
	})
	assert.NoError(t, err)
}

func TestCreate_LockBusy(t *testing.T) {
	provider, patient := testAccounts()
	svc := newTestService(newFakeLedger(), newFakeDirectory(provider, patient), busyLocker{})

	_, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		VisitType:    "CONSULTATION",
		Remarks:      "x",
	})

	assert.ErrorIs(t, err, ErrSlotBeingBooked)
}

func TestCreate_UniqueIndexBackstop(t *testing.T) {
	// The locked conflict check sees a free slot but the insert still loses
	// to the unique index. The winner is re-fetched and attached.
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	winner := &Appointment{ID: uuid.New(), ProviderEmail: provider.Email, Status: StatusPlanned}
	ledger.insertErr = ErrSlotOccupied
	ledger.conflictOnRetry = winner

	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	_, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		VisitType:    "CONSULTATION",
		Remarks:      "x",
	})

	var taken *SlotTakenError
	require.ErrorAs(t, err, &taken)
	require.NotNil(t, taken.Conflict)
	assert.Equal(t, winner.ID, taken.Conflict.ID)
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	when := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	const attempts = 20

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), provider.ID, CreateRequest{
				PatientEmail: patient.Email,
				ScheduledAt:  when,
				VisitType:    "CONSULTATION",
				Remarks:      "race",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var taken *SlotTakenError
		if !errors.As(err, &taken) && !errors.Is(err, ErrSlotBeingBooked) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, ledger.activeCount())
}

func TestTransitionStatus_Lifecycle(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	detail, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		VisitType:    "CONSULTATION",
		Remarks:      "x",
	})
	require.NoError(t, err)

	confirmed, err := svc.TransitionStatus(context.Background(), detail.ID, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	completed, err := svc.TransitionStatus(context.Background(), detail.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, completed.Status)

	_, err = svc.TransitionStatus(context.Background(), detail.ID, StatusCanceled)
	assert.ErrorIs(t, err, ErrTerminalState)

	// two transitions logged on top of the creation event
	assert.Len(t, ledger.events, 3)
}

func TestTransitionStatus_InvalidTarget(t *testing.T) {
	provider, patient := testAccounts()
	svc := newTestService(newFakeLedger(), newFakeDirectory(provider, patient), &serialLocker{})

	for _, target := range []Status{StatusPlanned, Status("ARCHIVED"), Status("")} {
		_, err := svc.TransitionStatus(context.Background(), uuid.New(), target)
		assert.ErrorIs(t, err, ErrInvalidTransition, "target %q", target)
	}
}

func TestTransitionStatus_NotFound(t *testing.T) {
	provider, patient := testAccounts()
	svc := newTestService(newFakeLedger(), newFakeDirectory(provider, patient), &serialLocker{})

	_, err := svc.TransitionStatus(context.Background(), uuid.New(), StatusConfirmed)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestTransitionStatus_CompletedBetweenLoadAndUpdate(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	detail, err := svc.Create(context.Background(), provider.ID, CreateRequest{
		PatientEmail: patient.Email,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		VisitType:    "CONSULTATION",
		Remarks:      "x",
	})
	require.NoError(t, err)

	ledger.casRefuse = true

	_, err = svc.TransitionStatus(context.Background(), detail.ID, StatusConfirmed)
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestListOrdering(t *testing.T) {
	provider, patient := testAccounts()
	ledger := newFakeLedger()
	svc := newTestService(ledger, newFakeDirectory(provider, patient), &serialLocker{})

	base := time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), provider.ID, CreateRequest{
			PatientEmail: patient.Email,
			ScheduledAt:  base.Add(time.Duration(i) * time.Hour),
			VisitType:    "CONSULTATION",
			Remarks:      "x",
		})
		require.NoError(t, err)
	}

	byProvider, err := svc.ListForProvider(context.Background(), provider.ID)
	require.NoError(t, err)
	require.Len(t, byProvider, 3)
	assert.True(t, byProvider[0].ScheduledAt.After(byProvider[2].ScheduledAt), "provider view is newest first")

	byPatient, err := svc.ListForPatient(context.Background(), patient.ID)
	require.NoError(t, err)
	require.Len(t, byPatient, 3)
	assert.True(t, byPatient[0].ScheduledAt.Before(byPatient[2].ScheduledAt), "patient view is oldest first")
}

func TestListForProvider_UnknownAccount(t *testing.T) {
	svc := newTestService(newFakeLedger(), newFakeDirectory(), &serialLocker{})

	_, err := svc.ListForProvider(context.Background(), uuid.New())
	assert.ErrorIs(t, err, identity.ErrAccountNotFound)
}
