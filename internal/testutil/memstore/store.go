// Package memstore is an in-memory stand-in for the Postgres repositories, used in tests.
// Transactions are serialized by one mutex and roll back by restoring a snapshot.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

type txKey struct{}

// txMode is stored under txKey for the duration of a transaction
type txMode struct {
	readOnly bool
}

// ErrLockInReadOnlyTx mirrors postgres rejecting SELECT ... FOR UPDATE in a read-only transaction
var ErrLockInReadOnlyTx = errors.New("memstore: cannot execute SELECT FOR UPDATE in a read-only transaction")

// Store holds all tables
type Store struct {
	mu sync.Mutex

	bookings map[uuid.UUID]domain.Booking
	slots    map[string]domain.Slot
	profits  map[string]domain.ProfitRecord
	events   []domain.BookingEvent
	users    map[uuid.UUID]domain.User
	seq      int64

	// updateFailures are returned, in order, by the next booking updates
	updateFailures []error
	// Err, when set, is returned by every repository call
	Err error

	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]domain.Booking),
		slots:    make(map[string]domain.Slot),
		profits:  make(map[string]domain.ProfitRecord),
		users:    make(map[uuid.UUID]domain.User),
		now:      time.Now,
	}
}

// FailNextUpdates makes the next booking updates fail with the given errors
func (s *Store) FailNextUpdates(errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateFailures = append(s.updateFailures, errs...)
}

// Do runs fn in a transaction, nested calls reuse the outer one
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, txMode{}, fn)
}

// DoSerializable same as Do
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, txMode{}, fn)
}

// DoReadOnly runs fn in a read-only transaction: row locks fail with ErrLockInReadOnlyTx
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.run(ctx, txMode{readOnly: true}, fn)
}

func (s *Store) run(ctx context.Context, mode txMode, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, mode)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lockedForUpdate is locked for reads that take a row lock
func (s *Store) lockedForUpdate(ctx context.Context, fn func() error) error {
	if mode, ok := ctx.Value(txKey{}).(txMode); ok && mode.readOnly {
		return ErrLockInReadOnlyTx
	}
	return s.locked(ctx, fn)
}

// locked runs fn under the store mutex unless the caller is already in a transaction
func (s *Store) locked(ctx context.Context, fn func() error) error {
	if ctx.Value(txKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if s.Err != nil {
		return s.Err
	}
	return fn()
}

type snapshot struct {
	bookings map[uuid.UUID]domain.Booking
	slots    map[string]domain.Slot
	profits  map[string]domain.ProfitRecord
	events   []domain.BookingEvent
	users    map[uuid.UUID]domain.User
	seq      int64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		bookings: make(map[uuid.UUID]domain.Booking, len(s.bookings)),
		slots:    make(map[string]domain.Slot, len(s.slots)),
		profits:  make(map[string]domain.ProfitRecord, len(s.profits)),
		events:   append([]domain.BookingEvent(nil), s.events...),
		users:    make(map[uuid.UUID]domain.User, len(s.users)),
		seq:      s.seq,
	}
	for k, v := range s.bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.slots {
		snap.slots[k] = v
	}
	for k, v := range s.profits {
		snap.profits[k] = v
	}
	for k, v := range s.users {
		snap.users[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.bookings = snap.bookings
	s.slots = snap.slots
	s.profits = snap.profits
	s.events = snap.events
	s.users = snap.users
	s.seq = snap.seq
}

// Snapshot accessors for assertions

// Slot returns a copy of a slot
func (s *Store) Slot(id string) (domain.Slot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	return slot, ok
}

// Booking returns a copy of a booking
func (s *Store) Booking(id uuid.UUID) (domain.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Events returns all appended events in seq order
func (s *Store) Events() []domain.BookingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BookingEvent(nil), s.events...)
}

// Profit returns the amount recorded for a date
func (s *Store) Profit(date time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profits[date.Format(domain.DateFormat)].Amount
}

// PutBooking stores a booking as is
func (s *Store) PutBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Version == 0 {
		b.Version = 1
	}
	s.bookings[b.ID] = b
}

// PutUser stores a user as is
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// SetSlotStatus overrides a slot status
func (s *Store) SetSlotStatus(id string, status domain.SlotStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.slots[id]
	slot.Status = status
	s.slots[id] = slot
}

func sortSlots(slots []*domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if len(a.Row) != len(b.Row) {
			return len(a.Row) < len(b.Row)
		}
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Index < b.Index
	})
}
