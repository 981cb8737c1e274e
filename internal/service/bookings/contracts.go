package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
	ListDueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	Update(ctx context.Context, booking *domain.Booking, expectedVersion int64) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	CompareAndSwapStatus(ctx context.Context, id string, from, to domain.SlotStatus, pwdInUse bool) error
}

// ProfitRepository интерфейс репозитория выручки
type ProfitRepository interface {
	AddAmount(ctx context.Context, date time.Time, amount int64) (int64, error)
}

// EventRepository интерфейс журнала событий
type EventRepository interface {
	Append(ctx context.Context, event *domain.BookingEvent) error
	ListSince(ctx context.Context, since int64, limit int) ([]*domain.BookingEvent, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier рассылка закоммиченных событий
type Notifier interface {
	Notify(ctx context.Context, events ...*domain.BookingEvent)
}

// MetricsRecorder счетчики операций жизненного цикла
type MetricsRecorder interface {
	RecordTransition(operation, result string)
	RecordSweep(expired int, err error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
