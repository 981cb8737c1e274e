package profit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// Repository репозиторий дневной выручки
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория выручки
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// AddAmount атомарно прибавляет amount к записи за дату (создает запись, если её нет).
// amount может быть отрицательным (снятие отметки об оплате). Возвращает новую сумму.
func (r *Repository) AddAmount(ctx context.Context, date time.Time, amount int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("profits").
		Columns("profit_date", "amount").
		Values(date.Format(domain.DateFormat), amount).
		Suffix("ON CONFLICT (profit_date) DO UPDATE SET amount = profits.amount + EXCLUDED.amount, updated_at = NOW() RETURNING amount").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: AddAmount - build upsert query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: AddAmount - execute upsert: %w", ErrExecQuery, err)
	}

	return total, nil
}

// GetByDate получает запись за дату
func (r *Repository) GetByDate(ctx context.Context, date time.Time) (*domain.ProfitRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("profit_date", "amount", "updated_at").
		From("profits").
		Where(squirrel.Eq{"profit_date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - build select query: %v", ErrBuildQuery, err)
	}

	var record domain.ProfitRecord
	err = executor.QueryRowContext(ctx, query, args...).Scan(&record.Date, &record.Amount, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDate - scan record: %w", ErrScanRow, err)
	}

	return &record, nil
}

// List получает записи в диапазоне дат включительно, по возрастанию даты
func (r *Repository) List(ctx context.Context, from, to time.Time) ([]*domain.ProfitRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("profit_date", "amount", "updated_at").
		From("profits").
		Where(squirrel.GtOrEq{"profit_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"profit_date": to.Format(domain.DateFormat)}).
		OrderBy("profit_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.ProfitRecord, 0)
	for rows.Next() {
		var record domain.ProfitRecord
		if err := rows.Scan(&record.Date, &record.Amount, &record.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return records, nil
}

// Total сумма выручки за все время
func (r *Repository) Total(ctx context.Context) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COALESCE(SUM(amount), 0)").
		From("profits").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: Total - build select query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: Total - scan total: %w", ErrScanRow, err)
	}

	return total, nil
}
