package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	slotRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// Операции жизненного цикла (метки метрик)
const (
	OpApprove    = "approve"
	OpDecline    = "decline"
	OpMarkPaid   = "mark_paid"
	OpMarkUnpaid = "mark_unpaid"
	OpCheckout   = "checkout"
	OpExpire     = "expire"
)

// Результаты операций (метки метрик)
const (
	resultOK       = "ok"
	resultNoop     = "noop"
	resultRejected = "rejected"
	resultError    = "error"
)

// maxVersionRetries число попыток при конфликте версии бронирования
const maxVersionRetries = 3

// effect описывает побочные изменения одного перехода
type effect struct {
	noop bool

	// slotTo пустой - слот не меняется
	slotFrom domain.SlotStatus
	slotTo   domain.SlotStatus
	pwdInUse bool

	profitDelta int64
	profitDate  time.Time

	eventType domain.EventType
}

// slotStatus статус слота после перехода (для события)
func (e effect) slotStatus(current domain.SlotStatus) domain.SlotStatus {
	if e.slotTo != "" {
		return e.slotTo
	}
	return current
}

// stepFunc меняет бронирование в памяти и возвращает побочные изменения
type stepFunc func(b *domain.Booking, now time.Time) (effect, error)

// Approve переводит pending -> approved, слот reserved -> occupied
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	b, _, err := s.transition(ctx, OpApprove, id, approveStep)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// Decline переводит pending -> declined, слот освобождается
func (s *Service) Decline(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	b, _, err := s.transition(ctx, OpDecline, id, declineStep)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// MarkPaid отмечает оплату approved бронирования и добавляет сумму к выручке дня оплаты.
// Повторный вызов для оплаченного бронирования ничего не меняет.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	b, _, err := s.transition(ctx, OpMarkPaid, id, markPaidStep)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// MarkUnpaid снимает отметку об оплате и вычитает сумму из выручки дня оплаты
func (s *Service) MarkUnpaid(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	b, _, err := s.transition(ctx, OpMarkUnpaid, id, s.markUnpaidStep)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// Checkout завершает оплаченное approved бронирование, слот освобождается
func (s *Service) Checkout(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	b, _, err := s.transition(ctx, OpCheckout, id, checkoutStep)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// Expire завершает approved бронирование, время которого истекло.
// Возвращает false, если бронирование еще не истекло или уже завершено.
func (s *Service) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	_, changed, err := s.transition(ctx, OpExpire, id, expireStep)
	return changed, err
}

func approveStep(b *domain.Booking, now time.Time) (effect, error) {
	if err := b.TransitionTo(domain.StatusApproved, now); err != nil {
		return effect{}, err
	}
	return effect{
		slotFrom:  domain.SlotReserved,
		slotTo:    domain.SlotOccupied,
		pwdInUse:  b.IsPWD,
		eventType: domain.EventBookingApproved,
	}, nil
}

func declineStep(b *domain.Booking, now time.Time) (effect, error) {
	if err := b.TransitionTo(domain.StatusDeclined, now); err != nil {
		return effect{}, err
	}
	return effect{
		slotFrom:  domain.SlotReserved,
		slotTo:    domain.SlotAvailable,
		eventType: domain.EventBookingDeclined,
	}, nil
}

func markPaidStep(b *domain.Booking, now time.Time) (effect, error) {
	if b.Status != domain.StatusApproved {
		return effect{}, fmt.Errorf("%w: cannot mark %s booking as paid", domain.ErrInvalidTransition, b.Status)
	}
	if b.IsPaid {
		return effect{noop: true}, nil
	}

	b.IsPaid = true
	b.PaidAt = &now
	return effect{
		profitDelta: b.TotalAmount,
		profitDate:  domain.DateOf(now),
		eventType:   domain.EventBookingPaid,
	}, nil
}

func (s *Service) markUnpaidStep(b *domain.Booking, now time.Time) (effect, error) {
	if b.Status != domain.StatusApproved {
		return effect{}, fmt.Errorf("%w: cannot mark %s booking as unpaid", domain.ErrInvalidTransition, b.Status)
	}
	if !b.IsPaid {
		return effect{noop: true}, nil
	}

	// Выручка сторнируется за тот день, в который была учтена оплата
	paidAt := now
	if b.PaidAt != nil {
		paidAt = b.PaidAt.In(s.location)
	}

	b.IsPaid = false
	b.PaidAt = nil
	return effect{
		profitDelta: -b.TotalAmount,
		profitDate:  domain.DateOf(paidAt),
		eventType:   domain.EventBookingUnpaid,
	}, nil
}

func checkoutStep(b *domain.Booking, now time.Time) (effect, error) {
	if b.Status == domain.StatusCompleted {
		return effect{noop: true}, nil
	}
	if b.Status != domain.StatusApproved {
		return effect{}, fmt.Errorf("%w: cannot check out %s booking", domain.ErrInvalidTransition, b.Status)
	}
	if !b.IsPaid {
		return effect{}, ErrNotPaid
	}
	if err := b.TransitionTo(domain.StatusCompleted, now); err != nil {
		return effect{}, err
	}
	return effect{
		slotFrom:  domain.SlotOccupied,
		slotTo:    domain.SlotAvailable,
		eventType: domain.EventBookingCompleted,
	}, nil
}

func expireStep(b *domain.Booking, now time.Time) (effect, error) {
	if !b.IsDue(now) {
		return effect{noop: true}, nil
	}
	if err := b.TransitionTo(domain.StatusCompleted, now); err != nil {
		return effect{}, err
	}
	return effect{
		slotFrom:  domain.SlotOccupied,
		slotTo:    domain.SlotAvailable,
		eventType: domain.EventBookingExpired,
	}, nil
}

// transition выполняет один шаг жизненного цикла атомарно: бронирование, слот, выручка и событие
// меняются в одной serializable транзакции. Переходы одного бронирования внутри процесса
// сериализуются мьютексом, между процессами - проверкой версии с повтором.
func (s *Service) transition(ctx context.Context, op string, id uuid.UUID, step stepFunc) (*domain.Booking, bool, error) {
	s.logger.Info("%s: processing booking id=%s", op, id)

	unlock := s.locks.Lock(id)
	defer unlock()

	var (
		booking *domain.Booking
		event   *domain.BookingEvent
		err     error
	)
	for attempt := 1; attempt <= maxVersionRetries; attempt++ {
		booking, event, err = s.applyOnce(ctx, id, step)
		if !errors.Is(err, bookingRepo.ErrVersionConflict) {
			break
		}
		s.logger.Warn("%s: version conflict for booking id=%s (attempt %d/%d)", op, id, attempt, maxVersionRetries)
	}

	if err != nil {
		mapped, result := s.mapTransitionError(op, id, err)
		s.recordTransition(op, result)
		return nil, false, mapped
	}

	if event == nil {
		s.logger.Info("%s: booking id=%s unchanged (status=%s, paid=%t)", op, id, booking.Status, booking.IsPaid)
		s.recordTransition(op, resultNoop)
		return booking, false, nil
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, event)
	}
	s.recordTransition(op, resultOK)
	s.logger.Info("%s: booking id=%s is now %s (paid=%t)", op, id, booking.Status, booking.IsPaid)
	return booking, true, nil
}

// applyOnce одна попытка перехода. Возвращает event == nil, если изменений не было.
func (s *Service) applyOnce(ctx context.Context, id uuid.UUID, step stepFunc) (*domain.Booking, *domain.BookingEvent, error) {
	var (
		booking *domain.Booking
		event   *domain.BookingEvent
	)

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, event = nil, nil

		b, err := s.bookingRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		now := s.now()
		expectedVersion := b.Version
		eff, err := step(b, now)
		if err != nil {
			return err
		}
		if eff.noop {
			booking = b
			return nil
		}

		b.UpdatedAt = now
		if err := s.bookingRepo.Update(txCtx, b, expectedVersion); err != nil {
			return err
		}
		b.Version = expectedVersion + 1

		if eff.slotTo != "" {
			if err := s.slotRepo.CompareAndSwapStatus(txCtx, b.SlotID, eff.slotFrom, eff.slotTo, eff.pwdInUse); err != nil {
				return err
			}
		}

		if eff.profitDelta != 0 {
			if _, err := s.profitRepo.AddAmount(txCtx, eff.profitDate, eff.profitDelta); err != nil {
				return err
			}
		}

		ev := domain.NewBookingEvent(eff.eventType, b, eff.slotStatus(currentSlotStatus(b)), now)
		if err := s.eventRepo.Append(txCtx, ev); err != nil {
			return err
		}

		booking, event = b, ev
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return booking, event, nil
}

// mapTransitionError переводит ошибку хранилища или домена в ошибку сервиса и метку результата
func (s *Service) mapTransitionError(op string, id uuid.UUID, err error) (error, string) {
	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound):
		s.logger.Warn("%s: booking id=%s not found", op, id)
		return ErrBookingNotFound, resultRejected
	case errors.Is(err, domain.ErrInvalidTransition):
		s.logger.Warn("%s: rejected for booking id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err), resultRejected
	case errors.Is(err, ErrNotPaid):
		s.logger.Warn("%s: booking id=%s is not paid", op, id)
		return ErrNotPaid, resultRejected
	case errors.Is(err, slotRepo.ErrStatusMismatch), errors.Is(err, bookingRepo.ErrSlotTaken):
		s.logger.Error("%s: slot state conflict for booking id=%s: %v", op, id, err)
		return fmt.Errorf("%w: %v", ErrSlotConflict, err), resultRejected
	case errors.Is(err, bookingRepo.ErrVersionConflict):
		s.logger.Warn("%s: booking id=%s still conflicting after %d attempts", op, id, maxVersionRetries)
		return ErrConcurrentUpdate, resultError
	default:
		s.logger.Error("%s: failed for booking id=%s: %v", op, id, err)
		return s.storageError(op, err), resultError
	}
}

func (s *Service) recordTransition(op, result string) {
	if s.metrics != nil {
		s.metrics.RecordTransition(op, result)
	}
}

// currentSlotStatus статус слота, который соответствует статусу бронирования
func currentSlotStatus(b *domain.Booking) domain.SlotStatus {
	switch b.Status {
	case domain.StatusPending:
		return domain.SlotReserved
	case domain.StatusApproved:
		return domain.SlotOccupied
	default:
		return domain.SlotAvailable
	}
}
