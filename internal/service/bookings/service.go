package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-ParkingService/pkg/keymutex"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
)

const (
	defaultListLimit  = 100
	maxListLimit      = 500
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	profitRepo   ProfitRepository
	eventRepo    EventRepository
	userRepo     UserRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      MetricsRecorder
	locks        *keymutex.KeyMutex[uuid.UUID]
	location     *time.Location
	sweepBatch   int
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований.
// location - часовой пояс парковки, в нем считаются даты выручки.
func NewService(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	profitRepo ProfitRepository,
	eventRepo EventRepository,
	userRepo UserRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics MetricsRecorder,
	location *time.Location,
	sweepBatch int,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	if sweepBatch <= 0 {
		sweepBatch = 100
	}
	return &Service{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		profitRepo:   profitRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		locks:        keymutex.New[uuid.UUID](),
		location:     location,
		sweepBatch:   sweepBatch,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь видит только своё бронирование, администратор - любое
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, requester models.Requester) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, requester.UserID)

	var booking *domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, s.storageError("GetByID", err)
	}

	// Проверяем права доступа
	if booking.UserID != requester.UserID && !requester.IsAdmin() {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%s", requester.UserID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// GetActive получает активное (pending/approved) бронирование пользователя
func (s *Service) GetActive(ctx context.Context, userID uuid.UUID) (*models.BookingResponse, error) {
	s.logger.Info("GetActive: fetching active booking for user=%s", userID)

	var booking *domain.Booking
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		booking, err = s.bookingRepo.GetActiveByUserID(txCtx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Info("GetActive: user=%s has no active booking", userID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetActive: repository error for user=%s: %v", userID, err)
		return nil, s.storageError("GetActive", err)
	}

	return models.FromDomainBooking(booking), nil
}

// List получает бронирования для администратора с фильтрацией по статусу, оплате и площадке.
// Каждое бронирование дополняется именем и номером машины владельца.
func (s *Service) List(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	filter, err := toDomainFilter(req)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		bookings []*domain.Booking
		owners   map[uuid.UUID]*domain.User
	)
	err = s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		bookings, err = s.bookingRepo.List(txCtx, filter)
		if err != nil {
			return err
		}
		owners, err = s.userRepo.GetByIDs(txCtx, ownerIDs(bookings))
		return err
	})
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, s.storageError("List", err)
	}

	s.logger.Info("List: successfully fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings, owners), nil
}

// ListEvents возвращает события с seq > since для догоняющих подписчиков
func (s *Service) ListEvents(ctx context.Context, since int64, limit int) (*models.EventListResponse, error) {
	if since < 0 {
		return nil, fmt.Errorf("%w: since must not be negative", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	var events []*domain.BookingEvent
	err := s.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		events, err = s.eventRepo.ListSince(txCtx, since, limit)
		return err
	})
	if err != nil {
		s.logger.Error("ListEvents: repository error since=%d: %v", since, err)
		return nil, s.storageError("ListEvents", err)
	}

	return models.FromDomainEvents(events, since), nil
}

// Вспомогательные методы

func (s *Service) now() time.Time {
	return s.timeProvider.Now().In(s.location)
}

// storageError классифицирует ошибку хранилища: временная недоступность или внутренняя ошибка
func (s *Service) storageError(op string, err error) error {
	if pgerrors.IsTransient(err) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

func toDomainFilter(req *models.ListBookingsRequest) (domain.BookingFilter, error) {
	filter := domain.BookingFilter{Limit: defaultListLimit}
	if req == nil {
		return filter, nil
	}

	if req.Limit > 0 {
		filter.Limit = req.Limit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	filter.IsPaid = req.IsPaid

	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	if req.Area != nil {
		area, err := domain.ParseArea(*req.Area)
		if err != nil {
			return filter, err
		}
		filter.Area = &area
	}
	if req.VehicleClass != nil {
		class, err := domain.ParseVehicleClass(*req.VehicleClass)
		if err != nil {
			return filter, err
		}
		filter.VehicleClass = &class
	}

	return filter, nil
}

func ownerIDs(bookings []*domain.Booking) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(bookings))
	ids := make([]uuid.UUID, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		ids = append(ids, b.UserID)
	}
	return ids
}
