package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	profitRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/profit"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	userRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/user"
)

// Bookings returns the booking repository view
func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }

// Slots returns the slot repository view
func (s *Store) Slots() *Slots { return &Slots{s: s} }

// Profits returns the profit repository view
func (s *Store) Profits() *Profits { return &Profits{s: s} }

// EventLog returns the event repository view
func (s *Store) EventLog() *EventLog { return &EventLog{s: s} }

// Users returns the user repository view
func (s *Store) Users() *Users { return &Users{s: s} }

// Bookings mirrors the booking repository
type Bookings struct{ s *Store }

func (r *Bookings) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	err := r.s.locked(ctx, func() error {
		if b.Status.IsActive() {
			for _, other := range r.s.bookings {
				if !other.Status.IsActive() {
					continue
				}
				if other.UserID == b.UserID {
					return bookingRepo.ErrActiveBookingExists
				}
				if other.SlotID == b.SlotID {
					return bookingRepo.ErrSlotTaken
				}
			}
		}
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.Version = 1
		now := r.s.now()
		b.CreatedAt, b.UpdatedAt = now, now
		r.s.bookings[b.ID] = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Bookings) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.get(ctx, id, r.s.locked)
}

func (r *Bookings) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.get(ctx, id, r.s.lockedForUpdate)
}

func (r *Bookings) get(ctx context.Context, id uuid.UUID, locked func(context.Context, func() error) error) (*domain.Booking, error) {
	var out *domain.Booking
	err := locked(ctx, func() error {
		b, ok := r.s.bookings[id]
		if !ok {
			return bookingRepo.ErrBookingNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *Bookings) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.s.locked(ctx, func() error {
		for _, b := range r.s.bookings {
			if b.UserID == userID && b.Status.IsActive() {
				b := b
				out = &b
				return nil
			}
		}
		return bookingRepo.ErrBookingNotFound
	})
	return out, err
}

func (r *Bookings) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	var out []*domain.Booking
	err := r.s.locked(ctx, func() error {
		for _, b := range r.s.bookings {
			b := b
			switch {
			case filter.UserID != nil && b.UserID != *filter.UserID,
				filter.Status != nil && b.Status != *filter.Status,
				filter.IsPaid != nil && b.IsPaid != *filter.IsPaid,
				filter.Area != nil && b.Area != *filter.Area,
				filter.VehicleClass != nil && b.VehicleClass != *filter.VehicleClass:
				continue
			}
			out = append(out, &b)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		if filter.Limit > 0 && len(out) > filter.Limit {
			out = out[:filter.Limit]
		}
		return nil
	})
	return out, err
}

func (r *Bookings) ListDueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := r.s.locked(ctx, func() error {
		due := make([]domain.Booking, 0)
		for _, b := range r.s.bookings {
			if b.IsDue(now) {
				due = append(due, b)
			}
		}
		sort.Slice(due, func(i, j int) bool { return due[i].ExpiresAt.Before(due[j].ExpiresAt) })
		for _, b := range due {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, b.ID)
		}
		return nil
	})
	return out, err
}

func (r *Bookings) Update(ctx context.Context, b *domain.Booking, expectedVersion int64) error {
	return r.s.locked(ctx, func() error {
		if len(r.s.updateFailures) > 0 {
			err := r.s.updateFailures[0]
			r.s.updateFailures = r.s.updateFailures[1:]
			return err
		}
		current, ok := r.s.bookings[b.ID]
		if !ok || current.Version != expectedVersion {
			return bookingRepo.ErrVersionConflict
		}
		current.Status = b.Status
		current.IsPaid = b.IsPaid
		current.PaidAt = b.PaidAt
		current.ApprovedAt = b.ApprovedAt
		current.CompletedAt = b.CompletedAt
		current.Version = expectedVersion + 1
		current.UpdatedAt = r.s.now()
		r.s.bookings[b.ID] = current
		return nil
	})
}

func (r *Bookings) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int, error) {
	counts := make(map[domain.BookingStatus]int)
	err := r.s.locked(ctx, func() error {
		for _, b := range r.s.bookings {
			counts[b.Status]++
		}
		return nil
	})
	return counts, err
}

// Slots mirrors the slot repository
type Slots struct{ s *Store }

func (r *Slots) Seed(ctx context.Context, slots []*domain.Slot) (int, error) {
	inserted := 0
	err := r.s.locked(ctx, func() error {
		for _, slot := range slots {
			if _, ok := r.s.slots[slot.ID]; ok {
				continue
			}
			r.s.slots[slot.ID] = *slot
			inserted++
		}
		return nil
	})
	return inserted, err
}

func (r *Slots) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	return r.get(ctx, id, r.s.locked)
}

func (r *Slots) GetByIDForUpdate(ctx context.Context, id string) (*domain.Slot, error) {
	return r.get(ctx, id, r.s.lockedForUpdate)
}

func (r *Slots) get(ctx context.Context, id string, locked func(context.Context, func() error) error) (*domain.Slot, error) {
	var out *domain.Slot
	err := locked(ctx, func() error {
		slot, ok := r.s.slots[id]
		if !ok {
			return slotRepo.ErrSlotNotFound
		}
		out = &slot
		return nil
	})
	return out, err
}

func (r *Slots) List(ctx context.Context, area domain.Area, class domain.VehicleClass) ([]*domain.Slot, error) {
	var out []*domain.Slot
	err := r.s.locked(ctx, func() error {
		for _, slot := range r.s.slots {
			if slot.Area == area && slot.VehicleClass == class {
				slot := slot
				out = append(out, &slot)
			}
		}
		sortSlots(out)
		return nil
	})
	return out, err
}

func (r *Slots) CompareAndSwapStatus(ctx context.Context, id string, from, to domain.SlotStatus, pwdInUse bool) error {
	return r.s.locked(ctx, func() error {
		slot, ok := r.s.slots[id]
		if !ok || slot.Status != from {
			return slotRepo.ErrStatusMismatch
		}
		slot.Status = to
		slot.PWDInUse = pwdInUse
		slot.UpdatedAt = r.s.now()
		r.s.slots[id] = slot
		return nil
	})
}

func (r *Slots) Summaries(ctx context.Context) ([]domain.OccupancySummary, error) {
	var out []domain.OccupancySummary
	err := r.s.locked(ctx, func() error {
		for _, area := range domain.Areas {
			for _, class := range domain.VehicleClasses {
				summary := domain.OccupancySummary{Area: area, VehicleClass: class}
				for _, slot := range r.s.slots {
					if slot.Area == area && slot.VehicleClass == class {
						summary.Add(slot.Status, 1)
					}
				}
				if summary.Total > 0 {
					out = append(out, summary)
				}
			}
		}
		return nil
	})
	return out, err
}

// Profits mirrors the profit repository
type Profits struct{ s *Store }

func (r *Profits) AddAmount(ctx context.Context, date time.Time, amount int64) (int64, error) {
	var total int64
	err := r.s.locked(ctx, func() error {
		key := date.Format(domain.DateFormat)
		rec := r.s.profits[key]
		rec.Date = domain.DateOf(date)
		rec.Amount += amount
		rec.UpdatedAt = r.s.now()
		r.s.profits[key] = rec
		total = rec.Amount
		return nil
	})
	return total, err
}

func (r *Profits) GetByDate(ctx context.Context, date time.Time) (*domain.ProfitRecord, error) {
	var out *domain.ProfitRecord
	err := r.s.locked(ctx, func() error {
		rec, ok := r.s.profits[date.Format(domain.DateFormat)]
		if !ok {
			return profitRepo.ErrProfitNotFound
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *Profits) List(ctx context.Context, from, to time.Time) ([]*domain.ProfitRecord, error) {
	var out []*domain.ProfitRecord
	err := r.s.locked(ctx, func() error {
		lo, hi := from.Format(domain.DateFormat), to.Format(domain.DateFormat)
		for key, rec := range r.s.profits {
			if key < lo || key > hi {
				continue
			}
			rec := rec
			out = append(out, &rec)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return nil
	})
	return out, err
}

func (r *Profits) Total(ctx context.Context) (int64, error) {
	var total int64
	err := r.s.locked(ctx, func() error {
		for _, rec := range r.s.profits {
			total += rec.Amount
		}
		return nil
	})
	return total, err
}

// EventLog mirrors the event repository
type EventLog struct{ s *Store }

func (r *EventLog) Append(ctx context.Context, e *domain.BookingEvent) error {
	return r.s.locked(ctx, func() error {
		r.s.seq++
		e.Seq = r.s.seq
		r.s.events = append(r.s.events, *e)
		return nil
	})
}

func (r *EventLog) ListSince(ctx context.Context, since int64, limit int) ([]*domain.BookingEvent, error) {
	var out []*domain.BookingEvent
	err := r.s.locked(ctx, func() error {
		for _, e := range r.s.events {
			if e.Seq <= since {
				continue
			}
			if limit > 0 && len(out) == limit {
				break
			}
			e := e
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

// Users mirrors the user repository
type Users struct{ s *Store }

func (r *Users) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	err := r.s.locked(ctx, func() error {
		for _, other := range r.s.users {
			if strings.EqualFold(other.Email, u.Email) {
				return userRepo.ErrEmailTaken
			}
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		now := r.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		r.s.users[u.ID] = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var out *domain.User
	err := r.s.locked(ctx, func() error {
		u, ok := r.s.users[id]
		if !ok {
			return userRepo.ErrUserNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var out *domain.User
	err := r.s.locked(ctx, func() error {
		for _, u := range r.s.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return userRepo.ErrUserNotFound
	})
	return out, err
}

func (r *Users) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	out := make(map[uuid.UUID]*domain.User, len(ids))
	err := r.s.locked(ctx, func() error {
		for _, id := range ids {
			if u, ok := r.s.users[id]; ok {
				u := u
				out[id] = &u
			}
		}
		return nil
	})
	return out, err
}

func (r *Users) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.s.locked(ctx, func() error {
		u, ok := r.s.users[id]
		if !ok {
			return userRepo.ErrUserNotFound
		}
		u.Active = active
		r.s.users[id] = u
		return nil
	})
}

func (r *Users) CountActive(ctx context.Context) (int, error) {
	count := 0
	err := r.s.locked(ctx, func() error {
		for _, u := range r.s.users {
			if u.Active {
				count++
			}
		}
		return nil
	})
	return count, err
}
