package event

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository журнал событий бронирований
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр журнала событий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет событие и заполняет event.Seq.
// Вызывается в транзакции перехода: событие видно только вместе с самим изменением.
func (r *Repository) Append(ctx context.Context, event *domain.BookingEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if dbmetrics.IsInTransaction(ctx) {
		if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", appendLockKey); err != nil {
			return fmt.Errorf("%w: Append - acquire sequence lock: %w", ErrExecQuery, err)
		}
	}

	query, args, err := psqlbuilder.Insert("booking_events").
		Columns(
			"id",
			"event_type",
			"booking_id",
			"user_id",
			"slot_id",
			"status",
			"slot_status",
			"is_paid",
			"occurred_at",
		).
		Values(
			event.ID,
			event.Type,
			event.BookingID,
			event.UserID,
			event.SlotID,
			event.Status,
			event.SlotStatus,
			event.IsPaid,
			event.OccurredAt,
		).
		Suffix("RETURNING seq").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.Seq); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// ListSince возвращает события с seq > since по возрастанию seq
func (r *Repository) ListSince(ctx context.Context, since int64, limit int) ([]*domain.BookingEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"seq",
		"id",
		"event_type",
		"booking_id",
		"user_id",
		"slot_id",
		"status",
		"slot_status",
		"is_paid",
		"occurred_at",
	).
		From("booking_events").
		Where(squirrel.Gt{"seq": since}).
		OrderBy("seq ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListSince - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListSince - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.BookingEvent, 0)
	for rows.Next() {
		var e domain.BookingEvent
		err := rows.Scan(
			&e.Seq,
			&e.ID,
			&e.Type,
			&e.BookingID,
			&e.UserID,
			&e.SlotID,
			&e.Status,
			&e.SlotStatus,
			&e.IsPaid,
			&e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListSince - scan row: %w", ErrScanRow, err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListSince - rows error: %w", ErrScanRow, err)
	}

	return events, nil
}
