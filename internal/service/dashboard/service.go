package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	profitRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/profit"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
	"github.com/m04kA/SMC-ParkingService/pkg/ptr"
)

const unpaidLimit = 100

// Service сводка для панели администратора
type Service struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	profitRepo   ProfitRepository
	userRepo     UserRepository
	txManager    TransactionManager
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	profitRepo ProfitRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		profitRepo:   profitRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Get собирает сводку. Части читаются параллельно, каждая в своей read-only транзакции,
// поэтому сводка не является единым снимком.
func (s *Service) Get(ctx context.Context) (*Response, error) {
	now := s.timeProvider.Now().In(s.location)
	resp := &Response{GeneratedAt: now}

	var (
		summaries []domain.OccupancySummary
		counts    map[domain.BookingStatus]int
		unpaid    []*domain.Booking
		owners    map[uuid.UUID]*domain.User
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.read(gctx, "occupancy", func(txCtx context.Context) error {
			var err error
			summaries, err = s.slotRepo.Summaries(txCtx)
			return err
		})
	})

	g.Go(func() error {
		return s.read(gctx, "revenue", func(txCtx context.Context) error {
			total, err := s.profitRepo.Total(txCtx)
			if err != nil {
				return err
			}
			resp.TotalRevenue = total

			today, err := s.profitRepo.GetByDate(txCtx, domain.DateOf(now))
			if err != nil {
				if errors.Is(err, profitRepo.ErrProfitNotFound) {
					return nil
				}
				return err
			}
			resp.TodayRevenue = today.Amount
			return nil
		})
	})

	g.Go(func() error {
		return s.read(gctx, "active users", func(txCtx context.Context) error {
			n, err := s.userRepo.CountActive(txCtx)
			resp.ActiveUsers = n
			return err
		})
	})

	g.Go(func() error {
		return s.read(gctx, "booking counts", func(txCtx context.Context) error {
			var err error
			counts, err = s.bookingRepo.CountByStatus(txCtx)
			return err
		})
	})

	g.Go(func() error {
		return s.read(gctx, "unpaid", func(txCtx context.Context) error {
			var err error
			unpaid, err = s.bookingRepo.List(txCtx, domain.BookingFilter{
				Status: ptr.Ptr(domain.StatusApproved),
				IsPaid: ptr.Ptr(false),
				Limit:  unpaidLimit,
			})
			if err != nil {
				return err
			}
			owners, err = s.userRepo.GetByIDs(txCtx, ownerIDs(unpaid))
			return err
		})
	})

	if err := g.Wait(); err != nil {
		if pgerrors.IsTransient(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	resp.Occupancy = toOccupancy(summaries)
	resp.BookingCounts = make(map[string]int, 4)
	for _, status := range []domain.BookingStatus{domain.StatusPending, domain.StatusApproved, domain.StatusDeclined, domain.StatusCompleted} {
		resp.BookingCounts[string(status)] = counts[status]
	}
	resp.Unpaid = toUnpaid(unpaid, owners)

	s.logger.Info("Get: dashboard built, activeUsers=%d unpaid=%d totalRevenue=%d",
		resp.ActiveUsers, len(resp.Unpaid), resp.TotalRevenue)
	return resp, nil
}

// read выполняет одну часть сводки в read-only транзакции
func (s *Service) read(ctx context.Context, part string, fn func(ctx context.Context) error) error {
	if err := s.txManager.DoReadOnly(ctx, fn); err != nil {
		s.logger.Error("Get: failed to read %s: %v", part, err)
		return fmt.Errorf("%s: %w", part, err)
	}
	return nil
}

func toOccupancy(summaries []domain.OccupancySummary) []Occupancy {
	out := make([]Occupancy, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, Occupancy{
			Area:         string(s.Area),
			AreaName:     s.Area.DisplayName(),
			VehicleClass: string(s.VehicleClass),
			Total:        s.Total,
			Available:    s.Available,
			Reserved:     s.Reserved,
			Occupied:     s.Occupied,
		})
	}
	return out
}

func toUnpaid(bookings []*domain.Booking, owners map[uuid.UUID]*domain.User) []UnpaidItem {
	out := make([]UnpaidItem, 0, len(bookings))
	for _, b := range bookings {
		item := UnpaidItem{
			BookingID:   b.ID.String(),
			SlotID:      b.SlotID,
			SlotLabel:   domain.SlotLabelFromID(b.SlotID),
			AreaName:    b.Area.DisplayName(),
			TotalAmount: b.TotalAmount,
			ExpiresAt:   b.ExpiresAt,
		}
		if owner, ok := owners[b.UserID]; ok {
			item.UserName = owner.FullName()
			item.PlateNumber = owner.PlateNumber
		}
		out = append(out, item)
	}
	return out
}

func ownerIDs(bookings []*domain.Booking) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(bookings))
	seen := make(map[uuid.UUID]struct{}, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		ids = append(ids, b.UserID)
	}
	return ids
}
