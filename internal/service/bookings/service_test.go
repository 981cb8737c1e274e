package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ParkingService/internal/testutil/memstore"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*domain.BookingEvent
}

func (n *recordingNotifier) Notify(_ context.Context, events ...*domain.BookingEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

type recordingMetrics struct {
	mu          sync.Mutex
	transitions map[string]int
	swept       int
}

func (m *recordingMetrics) RecordTransition(operation, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transitions == nil {
		m.transitions = make(map[string]int)
	}
	m.transitions[operation+"/"+result]++
}

func (m *recordingMetrics) RecordSweep(expired int, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swept += expired
}

type fixture struct {
	svc      *Service
	store    *memstore.Store
	clock    *fixedClock
	notifier *recordingNotifier
	metrics  *recordingMetrics
	user     domain.User
}

const slotA1 = "parking3-car-A-1"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	layout := domain.ParkingLayout{Partitions: []domain.Partition{
		{Area: domain.AreaParking3, VehicleClass: domain.VehicleCar, Total: 20, SlotsPerRow: 10, PWDSlots: 2},
	}}
	_, err := store.Slots().Seed(context.Background(), layout.AllSlots())
	require.NoError(t, err)

	user := domain.User{
		ID:          uuid.New(),
		FirstName:   "Juan",
		LastName:    "Dela Cruz",
		Email:       "juan@example.com",
		VehicleType: domain.VehicleCar,
		PlateNumber: "ABC-1234",
		Role:        domain.RoleRegular,
		Active:      true,
	}
	store.PutUser(user)

	clock := &fixedClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	metrics := &recordingMetrics{}

	svc := NewService(
		store.Bookings(),
		store.Slots(),
		store.Profits(),
		store.EventLog(),
		store.Users(),
		store,
		notifier,
		metrics,
		time.UTC,
		10,
		nopLogger{},
	)
	svc.timeProvider = clock

	return &fixture{svc: svc, store: store, clock: clock, notifier: notifier, metrics: metrics, user: user}
}

// reserve puts a pending booking on slot A-1, as create would
func (f *fixture) reserve(t *testing.T, checkIn time.Time, hours int) uuid.UUID {
	t.Helper()

	total, err := domain.ComputeFare(hours, domain.DefaultHourlyRate)
	require.NoError(t, err)

	b := domain.Booking{
		ID:           uuid.New(),
		UserID:       f.user.ID,
		Area:         domain.AreaParking3,
		VehicleClass: domain.VehicleCar,
		SlotID:       slotA1,
		Hours:        hours,
		TotalAmount:  total,
		CheckIn:      checkIn,
		ExpiresAt:    domain.ExpirationOf(checkIn, hours),
		Status:       domain.StatusPending,
		CreatedAt:    f.clock.Now(),
	}
	f.store.PutBooking(b)
	f.store.SetSlotStatus(slotA1, domain.SlotReserved)
	return b.ID
}

func (f *fixture) slotStatus(t *testing.T) domain.SlotStatus {
	t.Helper()
	slot, ok := f.store.Slot(slotA1)
	require.True(t, ok)
	return slot.Status
}

func TestLifecycle_ApprovePayCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)

	approved, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), approved.Status)
	assert.Equal(t, int64(100), approved.TotalAmount)
	assert.Equal(t, "A-1", approved.SlotLabel)
	assert.Equal(t, domain.SlotOccupied, f.slotStatus(t))

	paid, err := f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, int64(100), f.store.Profit(f.clock.Now()))

	done, err := f.svc.Checkout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, domain.SlotAvailable, f.slotStatus(t))

	events := f.store.Events()
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventBookingApproved, events[0].Type)
	assert.Equal(t, domain.EventBookingPaid, events[1].Type)
	assert.Equal(t, domain.EventBookingCompleted, events[2].Type)
	assert.Equal(t, []int64{1, 2, 3}, []int64{events[0].Seq, events[1].Seq, events[2].Seq})
	assert.Len(t, f.notifier.events, 3)
	assert.Equal(t, 1, f.metrics.transitions["checkout/ok"])
}

func TestApprove_SetsPWDInUseForPWDBooking(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 1)
	b, _ := f.store.Booking(id)
	b.IsPWD = true
	f.store.PutBooking(b)

	_, err := f.svc.Approve(context.Background(), id)
	require.NoError(t, err)

	slot, _ := f.store.Slot(slotA1)
	assert.True(t, slot.PWDInUse)
	assert.Equal(t, domain.SlotOccupied, slot.Status)
}

func TestDecline_ReleasesSlot(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 2)

	resp, err := f.svc.Decline(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusDeclined), resp.Status)
	assert.Equal(t, domain.SlotAvailable, f.slotStatus(t))
}

func TestApprove_RejectedOutsidePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)

	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Decline(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// отклоненный переход ничего не меняет
	assert.Equal(t, domain.SlotOccupied, f.slotStatus(t))
	assert.Len(t, f.store.Events(), 1)
	assert.Equal(t, 2, f.metrics.transitions["approve/rejected"]+f.metrics.transitions["decline/rejected"])
}

func TestMarkPaid_RequiresApproved(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 2)

	_, err := f.svc.MarkPaid(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, f.store.Profit(f.clock.Now()))
}

func TestMarkPaid_RepeatedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 3)

	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)

	resp, err := f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.IsPaid)
	assert.Equal(t, int64(150), f.store.Profit(f.clock.Now()))
	assert.Len(t, f.store.Events(), 2)
	assert.Equal(t, 1, f.metrics.transitions["mark_paid/noop"])
}

func TestMarkUnpaid_ReversesProfitOnPaymentDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	paidDay := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	f.clock.Set(paidDay)
	id := f.reserve(t, paidDay, 4)

	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(200), f.store.Profit(paidDay))

	nextDay := paidDay.Add(3 * time.Hour)
	f.clock.Set(nextDay)

	resp, err := f.svc.MarkUnpaid(ctx, id)
	require.NoError(t, err)
	assert.False(t, resp.IsPaid)
	assert.Nil(t, resp.PaidAt)
	assert.Zero(t, f.store.Profit(paidDay))
	assert.Zero(t, f.store.Profit(nextDay))

	// повторная отмена ничего не меняет
	_, err = f.svc.MarkUnpaid(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, f.store.Profit(paidDay))
}

func TestCheckout_RequiresPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)

	_, err := f.svc.Checkout(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Approve(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, id)
	assert.ErrorIs(t, err, ErrNotPaid)
	assert.Equal(t, domain.SlotOccupied, f.slotStatus(t))
}

func TestCheckout_RepeatedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)

	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, id)
	require.NoError(t, err)

	resp, err := f.svc.Checkout(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
	assert.Len(t, f.store.Events(), 3)
}

func TestTransition_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestTransition_SlotMismatchRollsBack(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 2)
	f.store.SetSlotStatus(slotA1, domain.SlotAvailable)

	_, err := f.svc.Approve(context.Background(), id)
	assert.ErrorIs(t, err, ErrSlotConflict)

	b, _ := f.store.Booking(id)
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Empty(t, f.store.Events())
	assert.Empty(t, f.notifier.events)
}

func TestTransition_RetriesVersionConflict(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 2)
	f.store.FailNextUpdates(bookingRepo.ErrVersionConflict)

	resp, err := f.svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusApproved), resp.Status)
	assert.Equal(t, int64(2), resp.Version)
}

func TestTransition_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 2)
	f.store.FailNextUpdates(bookingRepo.ErrVersionConflict, bookingRepo.ErrVersionConflict, bookingRepo.ErrVersionConflict)

	_, err := f.svc.Approve(context.Background(), id)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)
}

func TestTransition_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	id := f.reserve(t, f.clock.Now(), 2)
	f.store.FailNextUpdates(errors.New("disk on fire"))

	_, err := f.svc.Approve(context.Background(), id)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExpire_CompletesDueBookingOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checkIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.clock.Set(checkIn)
	id := f.reserve(t, checkIn, 3)
	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, 3, 10, 11, 59, 0, 0, time.UTC))
	n, err := f.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Set(time.Date(2026, 3, 10, 12, 1, 0, 0, time.UTC))
	n, err = f.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b, _ := f.store.Booking(id)
	assert.Equal(t, domain.StatusCompleted, b.Status)
	assert.Equal(t, domain.SlotAvailable, f.slotStatus(t))

	changed, err := f.svc.Expire(ctx, id)
	require.NoError(t, err)
	assert.False(t, changed)

	n, err = f.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	events := f.store.Events()
	assert.Equal(t, domain.EventBookingExpired, events[len(events)-1].Type)
	assert.Equal(t, 1, f.metrics.swept)
}

func TestExpire_IgnoresPendingBookings(t *testing.T) {
	f := newFixture(t)
	checkIn := f.clock.Now()
	id := f.reserve(t, checkIn, 1)
	f.clock.Set(checkIn.Add(2 * time.Hour))

	changed, err := f.svc.Expire(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, changed)

	b, _ := f.store.Booking(id)
	assert.Equal(t, domain.StatusPending, b.Status)
}

func TestApproveAndExpire_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 1)
	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)
	f.clock.Set(f.clock.Now().Add(2 * time.Hour))

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = f.svc.Checkout(ctx, id)
	}()
	go func() {
		defer wg.Done()
		_, results[1] = f.svc.Expire(ctx, id)
	}()
	wg.Wait()

	require.NoError(t, results[0])
	require.NoError(t, results[1])

	// ровно один переход в completed, слот освобожден один раз
	b, _ := f.store.Booking(id)
	assert.Equal(t, domain.StatusCompleted, b.Status)
	assert.Equal(t, domain.SlotAvailable, f.slotStatus(t))
	assert.Len(t, f.store.Events(), 3)
}

func TestGetByID_AccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)

	resp, err := f.svc.GetByID(ctx, id, models.Requester{UserID: f.user.ID, Role: domain.RoleRegular})
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.ID)

	_, err = f.svc.GetByID(ctx, id, models.Requester{UserID: uuid.New(), Role: domain.RoleRegular})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetByID(ctx, id, models.Requester{UserID: uuid.New(), Role: domain.RoleAdmin})
	assert.NoError(t, err)
}

func TestGetByID_UnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), uuid.New(), models.Requester{UserID: f.user.ID, Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetActive(ctx, f.user.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	id := f.reserve(t, f.clock.Now(), 2)
	resp, err := f.svc.GetActive(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.ID)
}

func TestList_FiltersAndEnrichesOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)
	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)

	status := "approved"
	paid := false
	resp, err := f.svc.List(ctx, &models.ListBookingsRequest{Status: &status, IsPaid: &paid})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	require.NotNil(t, resp.Bookings[0].UserName)
	assert.Equal(t, "Juan Dela Cruz", *resp.Bookings[0].UserName)
	assert.Equal(t, "ABC-1234", *resp.Bookings[0].PlateNumber)

	paid = true
	resp, err = f.svc.List(ctx, &models.ListBookingsRequest{IsPaid: &paid})
	require.NoError(t, err)
	assert.Zero(t, resp.Total)

	bad := "cancelled"
	_, err = f.svc.List(ctx, &models.ListBookingsRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListEvents_ResumesFromSeq(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.reserve(t, f.clock.Now(), 2)
	_, err := f.svc.Approve(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, id)
	require.NoError(t, err)

	page, err := f.svc.ListEvents(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "booking.paid", page.Events[0].Type)
	assert.Equal(t, int64(2), page.LastSeq)

	empty, err := f.svc.ListEvents(ctx, page.LastSeq, 0)
	require.NoError(t, err)
	assert.Empty(t, empty.Events)
	assert.Equal(t, int64(2), empty.LastSeq)

	_, err = f.svc.ListEvents(ctx, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
