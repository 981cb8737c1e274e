package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

// seedBatchSize количество слотов в одном INSERT при заполнении справочника
const seedBatchSize = 200

var slotColumns = []string{
	"id",
	"area",
	"vehicle_class",
	"row_name",
	"slot_index",
	"status",
	"accessible",
	"pwd_in_use",
	"updated_at",
}

// Repository репозиторий справочника парковочных мест
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Seed добавляет отсутствующие слоты. Существующие строки (и их статус) не трогаются.
// Возвращает количество добавленных слотов.
func (r *Repository) Seed(ctx context.Context, slots []*domain.Slot) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inserted := 0
	for start := 0; start < len(slots); start += seedBatchSize {
		end := start + seedBatchSize
		if end > len(slots) {
			end = len(slots)
		}

		insertBuilder := psqlbuilder.Insert("parking_slots").
			Columns("id", "area", "vehicle_class", "row_name", "slot_index", "status", "accessible")
		for _, s := range slots[start:end] {
			insertBuilder = insertBuilder.Values(s.ID, s.Area, s.VehicleClass, s.Row, s.Index, s.Status, s.Accessible)
		}

		query, args, err := insertBuilder.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
		if err != nil {
			return inserted, fmt.Errorf("%w: Seed - build insert query: %v", ErrBuildQuery, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("%w: Seed - execute insert: %w", ErrExecQuery, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("%w: Seed - get rows affected: %w", ErrExecQuery, err)
		}
		inserted += int(affected)
	}

	return inserted, nil
}

// GetByID получает слот по ID без блокировки строки
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	return r.getByID(ctx, "GetByID", id, false)
}

// GetByIDForUpdate получает слот по ID и блокирует строку до конца транзакции.
// Только для пишущих транзакций.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Slot, error) {
	return r.getByID(ctx, "GetByIDForUpdate", id, true)
}

func (r *Repository) getByID(ctx context.Context, op string, id string, forUpdate bool) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("parking_slots").
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %w", ErrScanRow, op, err)
	}

	return slot, nil
}

// List возвращает слоты площадки и класса транспорта, упорядоченные по ряду и номеру
func (r *Repository) List(ctx context.Context, area domain.Area, class domain.VehicleClass) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("parking_slots").
		Where(squirrel.Eq{"area": area, "vehicle_class": class}).
		OrderBy("LENGTH(row_name)", "row_name", "slot_index").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// CompareAndSwapStatus меняет статус слота from -> to и выставляет pwd_in_use.
// Если текущий статус не from, ничего не меняет и возвращает ErrStatusMismatch.
func (r *Repository) CompareAndSwapStatus(ctx context.Context, id string, from, to domain.SlotStatus, pwdInUse bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("parking_slots").
		Set("status", to).
		Set("pwd_in_use", pwdInUse).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CompareAndSwapStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CompareAndSwapStatus - execute update: %w", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: CompareAndSwapStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if affected == 0 {
		return ErrStatusMismatch
	}

	return nil
}

// Summaries считает слоты по статусам для каждой пары площадка/класс
func (r *Repository) Summaries(ctx context.Context) ([]domain.OccupancySummary, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("area", "vehicle_class", "status", "COUNT(*)").
		From("parking_slots").
		GroupBy("area", "vehicle_class", "status").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Summaries - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Summaries - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	type key struct {
		area  domain.Area
		class domain.VehicleClass
	}
	byKey := make(map[key]*domain.OccupancySummary)

	for rows.Next() {
		var (
			k      key
			status domain.SlotStatus
			count  int
		)
		if err := rows.Scan(&k.area, &k.class, &status, &count); err != nil {
			return nil, fmt.Errorf("%w: Summaries - scan row: %w", ErrScanRow, err)
		}
		s, ok := byKey[k]
		if !ok {
			s = &domain.OccupancySummary{Area: k.area, VehicleClass: k.class}
			byKey[k] = s
		}
		s.Add(status, count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Summaries - rows error: %w", ErrScanRow, err)
	}

	// Фиксированный порядок: площадки, затем классы
	summaries := make([]domain.OccupancySummary, 0, len(byKey))
	for _, area := range domain.Areas {
		for _, class := range domain.VehicleClasses {
			if s, ok := byKey[key{area, class}]; ok {
				summaries = append(summaries, *s)
			}
		}
	}

	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var slot domain.Slot
	err := row.Scan(
		&slot.ID,
		&slot.Area,
		&slot.VehicleClass,
		&slot.Row,
		&slot.Index,
		&slot.Status,
		&slot.Accessible,
		&slot.PWDInUse,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
