package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"thetalounge/internal/db"
	"thetalounge/internal/entities"
	"thetalounge/internal/repository"
	"thetalounge/internal/utils"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeState is the in-memory ledger the fake store serves. The booking
// transaction works on a deep copy that replaces the live state only on
// commit, mirroring the database rollback behavior.
type fakeState struct {
	days         map[string]db.CalendarDay
	activations  map[int]db.PackageActivation
	appointments []db.Appointment
	seq          int
	nextID       int
}

func newFakeState() *fakeState {
	return &fakeState{
		days:        make(map[string]db.CalendarDay),
		activations: make(map[int]db.PackageActivation),
		nextID:      1,
	}
}

func (st *fakeState) clone() *fakeState {
	copied := &fakeState{
		days:         make(map[string]db.CalendarDay, len(st.days)),
		activations:  make(map[int]db.PackageActivation, len(st.activations)),
		appointments: append([]db.Appointment(nil), st.appointments...),
		seq:          st.seq,
		nextID:       st.nextID,
	}
	for date, day := range st.days {
		copied.days[date] = day
	}
	for id, act := range st.activations {
		copied.activations[id] = act
	}
	return copied
}

type fakeStore struct {
	mu    sync.Mutex
	state *fakeState
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: newFakeState()}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&fakeTx{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *fakeStore) GetAppointmentByID(ctx context.Context, id int) (*db.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.appointments {
		if s.state.appointments[i].ID == id {
			appt := s.state.appointments[i]
			return &appt, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SetAppointmentStatus(ctx context.Context, id int, status string) (*db.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.appointments {
		if s.state.appointments[i].ID == id {
			s.state.appointments[i].Status = status
			s.state.appointments[i].UpdatedAt = time.Now()
			appt := s.state.appointments[i]
			return &appt, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) GetBookedTimes(ctx context.Context, date string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var times []string
	for _, appt := range s.state.appointments {
		if appt.Date != date || appt.Status == utils.AppointmentCancelled || seen[appt.Time] {
			continue
		}
		seen[appt.Time] = true
		times = append(times, appt.Time)
	}
	return times, nil
}

func (s *fakeStore) GetAppointmentCounts(ctx context.Context, startDate, endDate string) ([]entities.DateCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDate := make(map[string]int)
	for _, appt := range s.state.appointments {
		if appt.Date >= startDate && appt.Date <= endDate && appt.Status != utils.AppointmentCancelled {
			byDate[appt.Date]++
		}
	}
	var counts []entities.DateCount
	for date, count := range byDate {
		counts = append(counts, entities.DateCount{Date: date, Count: count})
	}
	return counts, nil
}

func (s *fakeStore) ListAppointments(ctx context.Context, startDate, endDate string, page, limit int) ([]db.Appointment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]db.Appointment(nil), s.state.appointments...), len(s.state.appointments), nil
}

type fakeTx struct {
	state *fakeState
}

func (t *fakeTx) ActivationForUpdate(id int) (*db.PackageActivation, error) {
	act, ok := t.state.activations[id]
	if !ok {
		return nil, nil
	}
	return &act, nil
}

func (t *fakeTx) ConsumeActivationSession(id int) error {
	act, ok := t.state.activations[id]
	if !ok || act.UsedCount >= act.TotalSessions {
		return repository.ErrSessionsExhausted
	}
	act.UsedCount++
	t.state.activations[id] = act
	return nil
}

func (t *fakeTx) CalendarDayForUpdate(date string) (*db.CalendarDay, error) {
	day, ok := t.state.days[date]
	if !ok {
		return nil, nil
	}
	return &day, nil
}

func (t *fakeTx) InsertCalendarDay(day *db.CalendarDay) error {
	day.ID = t.state.nextID
	t.state.nextID++
	t.state.days[day.Date] = *day
	return nil
}

func (t *fakeTx) DecrementCalendarDay(date string) error {
	day, ok := t.state.days[date]
	if !ok || day.SessionsToSell <= 0 {
		return repository.ErrCapacityExhausted
	}
	day.SessionsToSell--
	if day.SessionsToSell <= 0 {
		day.Status = utils.CalendarSoldOut
	} else {
		day.Status = utils.CalendarBookable
	}
	t.state.days[date] = day
	return nil
}

func (t *fakeTx) NextReservationSeq() (int, error) {
	t.state.seq++
	return t.state.seq, nil
}

func (t *fakeTx) InsertAppointment(appt *db.Appointment) error {
	appt.ID = t.state.nextID
	t.state.nextID++
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt
	t.state.appointments = append(t.state.appointments, *appt)
	return nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmed     []db.Appointment
	statusChanged []db.Appointment
}

func (n *fakeNotifier) BookingConfirmed(appt db.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, appt)
}

func (n *fakeNotifier) AppointmentStatusChanged(appt db.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusChanged = append(n.statusChanged, appt)
}

func defaultContext() *entities.CalendarContext {
	return &entities.CalendarContext{
		DefaultSystemSettings: entities.DefaultSystemSettings{
			OpenTime:            "09:00",
			CloseTime:           "21:00",
			SessionDuration:     60,
			CleaningBuffer:      30,
			NumberOfTanks:       2,
			TankStaggerInterval: 30,
		},
	}
}

func bookingRequest(date string) *entities.AppointmentRequest {
	return &entities.AppointmentRequest{
		Name:            "Jamie Rivera",
		Date:            date,
		Time:            "10:00",
		Email:           "jamie@example.com",
		ContactNumber:   "+14155550100",
		CalendarContext: defaultContext(),
	}
}

func TestBookSessionValidation(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewBookingService(store, notifier)

	cases := map[string]*entities.AppointmentRequest{
		"missing name": {
			Date: "2026-03-10", Time: "10:00", Email: "a@b.c", ContactNumber: "1", CalendarContext: defaultContext(),
		},
		"missing date": {
			Name: "A", Time: "10:00", Email: "a@b.c", ContactNumber: "1", CalendarContext: defaultContext(),
		},
		"missing time": {
			Name: "A", Date: "2026-03-10", Email: "a@b.c", ContactNumber: "1", CalendarContext: defaultContext(),
		},
		"missing email": {
			Name: "A", Date: "2026-03-10", Time: "10:00", ContactNumber: "1", CalendarContext: defaultContext(),
		},
		"missing contact": {
			Name: "A", Date: "2026-03-10", Time: "10:00", Email: "a@b.c", CalendarContext: defaultContext(),
		},
		"missing calendar context": {
			Name: "A", Date: "2026-03-10", Time: "10:00", Email: "a@b.c", ContactNumber: "1",
		},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.BookSession(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	require.Empty(t, store.state.appointments, "validation failures must not touch the store")
	require.Empty(t, notifier.confirmed)
}

func TestBookSessionInitializesCalendarDay(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewBookingService(store, notifier)

	resp, err := svc.BookSession(context.Background(), bookingRequest("2026-03-10"))
	require.NoError(t, err)
	require.Equal(t, "TLB-01", resp.ReservationID)
	require.Equal(t, "pending", resp.Status)

	day := store.state.days["2026-03-10"]
	require.Equal(t, 15, day.SessionsToSell, "16 computed sessions minus the booked one")
	require.Equal(t, utils.CalendarBookable, day.Status)
	require.Equal(t, "09:00", day.OpenTime)
	require.Equal(t, "21:00", day.CloseTime)

	require.Len(t, notifier.confirmed, 1)
	require.Equal(t, "TLB-01", notifier.confirmed[0].ReservationID)

	// A second booking reuses the materialized row instead of recomputing.
	resp, err = svc.BookSession(context.Background(), bookingRequest("2026-03-10"))
	require.NoError(t, err)
	require.Equal(t, "TLB-02", resp.ReservationID)
	require.Equal(t, 14, store.state.days["2026-03-10"].SessionsToSell)
}

func TestBookSessionSoldOut(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewBookingService(store, notifier)

	store.state.days["2026-03-11"] = db.CalendarDay{
		ID: 99, Date: "2026-03-11", Status: utils.CalendarSoldOut,
		OpenTime: "09:00", CloseTime: "21:00", SessionsToSell: 0,
	}

	_, err := svc.BookSession(context.Background(), bookingRequest("2026-03-11"))
	require.ErrorIs(t, err, ErrSoldOut)
	require.Empty(t, store.state.appointments)
	require.Empty(t, notifier.confirmed)
}

func TestBookSessionClosedDay(t *testing.T) {
	store := newFakeStore()
	svc := NewBookingService(store, &fakeNotifier{})

	store.state.days["2026-03-12"] = db.CalendarDay{
		ID: 99, Date: "2026-03-12", Status: utils.CalendarClosed,
		OpenTime: "09:00", CloseTime: "21:00", SessionsToSell: 3,
	}

	_, err := svc.BookSession(context.Background(), bookingRequest("2026-03-12"))
	require.ErrorIs(t, err, ErrSoldOut)
	require.Equal(t, 3, store.state.days["2026-03-12"].SessionsToSell)
}

func TestBookSessionLastUnitMarksSoldOut(t *testing.T) {
	store := newFakeStore()
	svc := NewBookingService(store, &fakeNotifier{})

	store.state.days["2026-03-13"] = db.CalendarDay{
		ID: 99, Date: "2026-03-13", Status: utils.CalendarBookable,
		OpenTime: "09:00", CloseTime: "21:00", SessionsToSell: 1,
	}

	_, err := svc.BookSession(context.Background(), bookingRequest("2026-03-13"))
	require.NoError(t, err)

	day := store.state.days["2026-03-13"]
	require.Equal(t, 0, day.SessionsToSell)
	require.Equal(t, utils.CalendarSoldOut, day.Status)

	_, err = svc.BookSession(context.Background(), bookingRequest("2026-03-13"))
	require.ErrorIs(t, err, ErrSoldOut)
}

func confirmedActivation(id, total, used int, expiry time.Time) db.PackageActivation {
	act := db.PackageActivation{
		ID: id, FullName: "Jamie Rivera", Email: "jamie@example.com",
		PackageID: 1, PackageName: "Starter", TotalSessions: total, UsedCount: used,
		Status: utils.ActivationConfirmed,
	}
	if !expiry.IsZero() {
		act.ExpiryDate = sql.NullTime{Time: expiry, Valid: true}
	}
	return act
}

func TestBookSessionWithPackage(t *testing.T) {
	activationID := 7

	t.Run("consumes a session and books", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})
		store.state.activations[activationID] = confirmedActivation(activationID, 5, 2, time.Now().Add(30*24*time.Hour))

		req := bookingRequest("2026-03-14")
		req.PackageActivationID = &activationID

		resp, err := svc.BookSession(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, resp.PackageActivationID)
		require.Equal(t, activationID, *resp.PackageActivationID)
		require.Equal(t, 3, store.state.activations[activationID].UsedCount)
		require.Equal(t, 15, store.state.days["2026-03-14"].SessionsToSell)
	})

	t.Run("unknown activation", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})

		req := bookingRequest("2026-03-14")
		req.PackageActivationID = &activationID

		_, err := svc.BookSession(context.Background(), req)
		require.ErrorIs(t, err, ErrPackageNotFound)
	})

	t.Run("pending activation rolls everything back", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewBookingService(store, notifier)

		act := confirmedActivation(activationID, 5, 0, time.Time{})
		act.Status = utils.ActivationPending
		store.state.activations[activationID] = act
		store.state.days["2026-03-14"] = db.CalendarDay{
			ID: 1, Date: "2026-03-14", Status: utils.CalendarBookable,
			OpenTime: "09:00", CloseTime: "21:00", SessionsToSell: 5,
		}

		req := bookingRequest("2026-03-14")
		req.PackageActivationID = &activationID

		_, err := svc.BookSession(context.Background(), req)
		require.ErrorIs(t, err, ErrPackageNotConfirmed)
		require.Equal(t, 0, store.state.activations[activationID].UsedCount)
		require.Equal(t, 5, store.state.days["2026-03-14"].SessionsToSell)
		require.Empty(t, store.state.appointments)
		require.Empty(t, notifier.confirmed)
	})

	t.Run("expired activation", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})
		store.state.activations[activationID] = confirmedActivation(activationID, 5, 0, time.Now().Add(-time.Hour))

		req := bookingRequest("2026-03-14")
		req.PackageActivationID = &activationID

		_, err := svc.BookSession(context.Background(), req)
		require.ErrorIs(t, err, ErrPackageExpired)
	})

	t.Run("exhausted activation", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})
		store.state.activations[activationID] = confirmedActivation(activationID, 5, 5, time.Now().Add(time.Hour))

		req := bookingRequest("2026-03-14")
		req.PackageActivationID = &activationID

		_, err := svc.BookSession(context.Background(), req)
		require.ErrorIs(t, err, ErrNoRemainingSessions)
	})
}

func TestBookSessionConcurrentLastCalendarUnit(t *testing.T) {
	store := newFakeStore()
	svc := NewBookingService(store, &fakeNotifier{})

	store.state.days["2026-03-15"] = db.CalendarDay{
		ID: 1, Date: "2026-03-15", Status: utils.CalendarBookable,
		OpenTime: "09:00", CloseTime: "21:00", SessionsToSell: 1,
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.BookSession(context.Background(), bookingRequest("2026-03-15"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, soldOut int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case err == ErrSoldOut:
			soldOut++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, soldOut)
	require.Len(t, store.state.appointments, 1)
	require.Equal(t, 0, store.state.days["2026-03-15"].SessionsToSell)
}

func TestBookSessionConcurrentLastPackageSession(t *testing.T) {
	store := newFakeStore()
	svc := NewBookingService(store, &fakeNotifier{})

	activationID := 3
	store.state.activations[activationID] = confirmedActivation(activationID, 4, 3, time.Now().Add(time.Hour))

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := bookingRequest("2026-03-16")
			req.PackageActivationID = &activationID
			_, err := svc.BookSession(context.Background(), req)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes, exhausted int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case err == ErrNoRemainingSessions:
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, exhausted)
	require.Equal(t, 4, store.state.activations[activationID].UsedCount)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	seed := func(store *fakeStore) {
		store.state.appointments = append(store.state.appointments, db.Appointment{
			ID: 42, ReservationID: "TLB-05", Name: "Jamie Rivera",
			Email: "jamie@example.com", ContactNumber: "+14155550100",
			Date: "2026-03-17", Time: "10:00", Status: utils.AppointmentPending,
		})
	}

	t.Run("pending to completed notifies once", func(t *testing.T) {
		store := newFakeStore()
		notifier := &fakeNotifier{}
		svc := NewBookingService(store, notifier)
		seed(store)

		resp, err := svc.UpdateAppointmentStatus(context.Background(), 42, "completed")
		require.NoError(t, err)
		require.Equal(t, "completed", resp.Status)
		require.Len(t, notifier.statusChanged, 1)

		// Re-applying the same status is a no-op success without a second
		// notification.
		resp, err = svc.UpdateAppointmentStatus(context.Background(), 42, "completed")
		require.NoError(t, err)
		require.Equal(t, "completed", resp.Status)
		require.Len(t, notifier.statusChanged, 1)
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})
		seed(store)

		_, err := svc.UpdateAppointmentStatus(context.Background(), 42, "cancelled")
		require.NoError(t, err)

		_, err = svc.UpdateAppointmentStatus(context.Background(), 42, "completed")
		require.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown status string", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})
		seed(store)

		_, err := svc.UpdateAppointmentStatus(context.Background(), 42, "archived")
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		store := newFakeStore()
		svc := NewBookingService(store, &fakeNotifier{})

		_, err := svc.UpdateAppointmentStatus(context.Background(), 999, "completed")
		require.ErrorIs(t, err, ErrAppointmentNotFound)
	})
}

func TestGetBookedTimesDeduplicates(t *testing.T) {
	store := newFakeStore()
	svc := NewBookingService(store, &fakeNotifier{})

	store.state.appointments = []db.Appointment{
		{ID: 1, Date: "2026-03-18", Time: "10:00", Status: utils.AppointmentPending},
		{ID: 2, Date: "2026-03-18", Time: "10:00", Status: utils.AppointmentCompleted},
		{ID: 3, Date: "2026-03-18", Time: "13:00", Status: utils.AppointmentPending},
		{ID: 4, Date: "2026-03-18", Time: "15:00", Status: utils.AppointmentCancelled},
		{ID: 5, Date: "2026-03-19", Time: "16:00", Status: utils.AppointmentPending},
	}

	times, err := svc.GetBookedTimes(context.Background(), "2026-03-18")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"10:00", "13:00"}, times)

	times, err = svc.GetBookedTimes(context.Background(), "2026-03-20")
	require.NoError(t, err)
	require.NotNil(t, times)
	require.Empty(t, times)
}
