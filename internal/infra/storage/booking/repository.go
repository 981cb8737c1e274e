package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"user_id",
	"area",
	"vehicle_class",
	"slot_id",
	"hours",
	"total_amount",
	"is_pwd",
	"check_in",
	"expires_at",
	"status",
	"is_paid",
	"paid_at",
	"approved_at",
	"completed_at",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Частичные уникальные индексы гарантируют одно активное бронирование на пользователя и на слот,
// их нарушение возвращается как ErrActiveBookingExists / ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.Version = 1

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"user_id",
			"area",
			"vehicle_class",
			"slot_id",
			"hours",
			"total_amount",
			"is_pwd",
			"check_in",
			"expires_at",
			"status",
			"is_paid",
			"version",
		).
		Values(
			booking.ID,
			booking.UserID,
			booking.Area,
			booking.VehicleClass,
			booking.SlotID,
			booking.Hours,
			booking.TotalAmount,
			booking.IsPWD,
			booking.CheckIn,
			booking.ExpiresAt,
			booking.Status,
			booking.IsPaid,
			booking.Version,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if constraint, ok := pgerrors.UniqueViolation(err); ok {
			switch constraint {
			case constraintOneActivePerUser:
				return nil, ErrActiveBookingExists
			case constraintOneActivePerSlot:
				return nil, ErrSlotTaken
			}
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID без блокировки строки
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.getByID(ctx, "GetByID", id, false)
}

// GetByIDForUpdate получает бронирование по ID и блокирует строку (FOR UPDATE) до конца транзакции.
// Только для пишущих транзакций: read-only транзакция postgres отклоняет FOR UPDATE.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.getByID(ctx, "GetByIDForUpdate", id, true)
}

func (r *Repository) getByID(ctx context.Context, op string, id uuid.UUID, forUpdate bool) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, op, err)
	}

	return booking, nil
}

// GetActiveByUserID получает активное (pending/approved) бронирование пользователя
func (r *Repository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByUserID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByUserID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования с фильтрацией, новые первыми
func (r *Repository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		OrderBy("created_at DESC")

	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.IsPaid != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_paid": *filter.IsPaid})
	}
	if filter.Area != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"area": *filter.Area})
	}
	if filter.VehicleClass != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"vehicle_class": *filter.VehicleClass})
	}
	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListDueIDs возвращает ID подтвержденных бронирований, время которых истекло к now
func (r *Repository) ListDueIDs(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("bookings").
		Where(squirrel.Eq{"status": domain.StatusApproved}).
		Where(squirrel.LtOrEq{"expires_at": now}).
		OrderBy("expires_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListDueIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueIDs - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListDueIDs - scan id: %w", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDueIDs - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

// Update сохраняет изменяемые поля бронирования, если версия в БД равна expectedVersion.
// При успехе booking.Version увеличивается на 1.
func (r *Repository) Update(ctx context.Context, booking *domain.Booking, expectedVersion int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", booking.Status).
		Set("is_paid", booking.IsPaid).
		Set("paid_at", booking.PaidAt).
		Set("approved_at", booking.ApprovedAt).
		Set("completed_at", booking.CompletedAt).
		Set("version", expectedVersion+1).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID, "version": expectedVersion}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVersionConflict
	}
	if err != nil {
		if constraint, ok := pgerrors.UniqueViolation(err); ok && constraint == constraintOneActivePerSlot {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	booking.Version = expectedVersion + 1
	return nil
}

// CountByStatus возвращает количество бронирований по статусам
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("status", "COUNT(*)").
		From("bookings").
		GroupBy("status").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[domain.BookingStatus]int)
	for rows.Next() {
		var status domain.BookingStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: CountByStatus - scan row: %w", ErrScanRow, err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByStatus - rows error: %w", ErrScanRow, err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.Area,
		&booking.VehicleClass,
		&booking.SlotID,
		&booking.Hours,
		&booking.TotalAmount,
		&booking.IsPWD,
		&booking.CheckIn,
		&booking.ExpiresAt,
		&booking.Status,
		&booking.IsPaid,
		&booking.PaidAt,
		&booking.ApprovedAt,
		&booking.CompletedAt,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
