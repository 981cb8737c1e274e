package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	userRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	slotRepo     SlotRepository
	userRepo     UserRepository
	eventRepo    EventRepository
	txManager    TransactionManager
	notifier     Notifier
	hourlyRate   int64
	location     *time.Location
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	userRepo UserRepository,
	eventRepo EventRepository,
	txManager TransactionManager,
	notifier Notifier,
	hourlyRate int64,
	location *time.Location,
	logger Logger,
) *UseCase {
	if hourlyRate <= 0 {
		hourlyRate = domain.DefaultHourlyRate
	}
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		bookingRepo:  bookingRepo,
		slotRepo:     slotRepo,
		userRepo:     userRepo,
		eventRepo:    eventRepo,
		txManager:    txManager,
		notifier:     notifier,
		hourlyRate:   hourlyRate,
		location:     location,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка пользователя, резервирование слота (compare-and-swap), запись бронирования и события
// выполняются в одной сериализуемой транзакции: из двух конкурентных запросов на один слот
// успешен ровно один.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	now := uc.timeProvider.Now().In(uc.location)

	// 1. Валидация входных данных (без обращения к хранилищу)
	v, err := validateRequest(req, now, uc.hourlyRate)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("CreateBooking: user=%s, slot=%s, hours=%d, checkIn=%s, pwd=%t",
		req.UserID, v.slotID, req.Hours, v.checkIn.Format(time.RFC3339), req.IsPWD)

	var (
		result *domain.Booking
		event  *domain.BookingEvent
	)

	// 2. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		result, event = nil, nil

		// 2.1. Пользователь существует и вошел в систему
		user, err := uc.userRepo.GetByID(txCtx, req.UserID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("get user: %w", err)
		}
		if !user.Active {
			return ErrUserInactive
		}

		// 2.2. Не больше одного активного бронирования на пользователя
		active, err := uc.bookingRepo.GetActiveByUserID(txCtx, req.UserID)
		if err != nil && !errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return fmt.Errorf("get active booking: %w", err)
		}
		if active != nil {
			return fmt.Errorf("%w: booking id=%s is %s", ErrActiveBookingExists, active.ID, active.Status)
		}

		// 2.3. Слот существует и соответствует площадке и классу
		slot, err := uc.slotRepo.GetByIDForUpdate(txCtx, v.slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("get slot: %w", err)
		}
		if err := validateSlot(slot, v); err != nil {
			return err
		}

		// 2.4. Резервируем слот: available -> reserved
		if err := uc.slotRepo.CompareAndSwapStatus(txCtx, slot.ID, domain.SlotAvailable, domain.SlotReserved, req.IsPWD); err != nil {
			if errors.Is(err, slotRepo.ErrStatusMismatch) {
				return fmt.Errorf("%w: slot %s is %s", ErrSlotConflict, slot.ID, slot.Status)
			}
			return fmt.Errorf("reserve slot: %w", err)
		}

		// 2.5. Сохраняем бронирование
		booking := &domain.Booking{
			UserID:       req.UserID,
			Area:         v.area,
			VehicleClass: v.class,
			SlotID:       slot.ID,
			Hours:        req.Hours,
			TotalAmount:  v.total,
			IsPWD:        req.IsPWD,
			CheckIn:      v.checkIn,
			ExpiresAt:    v.expires,
			Status:       domain.StatusPending,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			switch {
			case errors.Is(err, bookingRepo.ErrActiveBookingExists):
				return ErrActiveBookingExists
			case errors.Is(err, bookingRepo.ErrSlotTaken):
				return fmt.Errorf("%w: slot %s already has an active booking", ErrSlotConflict, slot.ID)
			}
			return fmt.Errorf("create booking: %w", err)
		}

		// 2.6. Событие в том же коммите
		ev := domain.NewBookingEvent(domain.EventBookingCreated, created, domain.SlotReserved, now)
		if err := uc.eventRepo.Append(txCtx, ev); err != nil {
			return fmt.Errorf("append event: %w", err)
		}

		result, event = created, ev
		return nil
	})

	if err != nil {
		return nil, uc.mapError(req, err)
	}

	if uc.notifier != nil {
		uc.notifier.Notify(ctx, event)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%s on slot=%s, total=%d",
		result.ID, result.SlotID, result.TotalAmount)

	return toResponse(result), nil
}

// mapError оставляет ошибки use case как есть, ошибки хранилища делит на временные и внутренние
func (uc *UseCase) mapError(req *Request, err error) error {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUserInactive),
		errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrInvalidInput):
		uc.logger.Warn("CreateBooking: rejected for user=%s: %v", req.UserID, err)
		return err
	case errors.Is(err, ErrActiveBookingExists),
		errors.Is(err, ErrSlotConflict):
		uc.logger.Warn("CreateBooking: conflict for user=%s: %v", req.UserID, err)
		return err
	case pgerrors.IsTransient(err):
		uc.logger.Error("CreateBooking: storage unavailable for user=%s: %v", req.UserID, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		uc.logger.Error("CreateBooking: failed for user=%s: %v", req.UserID, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:           b.ID,
		UserID:       b.UserID,
		Area:         string(b.Area),
		AreaName:     b.Area.DisplayName(),
		VehicleClass: string(b.VehicleClass),
		SlotID:       b.SlotID,
		SlotLabel:    domain.SlotLabelFromID(b.SlotID),
		Hours:        b.Hours,
		TotalAmount:  b.TotalAmount,
		IsPWD:        b.IsPWD,
		CheckIn:      b.CheckIn,
		ExpiresAt:    b.ExpiresAt,
		Status:       string(b.Status),
		IsPaid:       b.IsPaid,
		Version:      b.Version,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
