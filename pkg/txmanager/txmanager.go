package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
)

var (
	// ErrBeginTx возвращается, когда не удалось открыть транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommit возвращается, когда не удалось закоммитить транзакцию
	ErrCommit = errors.New("txmanager: failed to commit transaction")
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 20 * time.Millisecond
)

// TxBeginner источник транзакций (*dbmetrics.DB)
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функции в транзакции, кладя её в контекст.
// Репозитории достают транзакцию через dbmetrics.GetExecutor.
type TransactionManager struct {
	db          TxBeginner
	maxAttempts int
	baseDelay   time.Duration
}

// Option настройка TransactionManager
type Option func(*TransactionManager)

// WithRetry задает число попыток и начальную задержку между ними
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(m *TransactionManager) {
		if maxAttempts > 0 {
			m.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			m.baseDelay = baseDelay
		}
	}
}

// NewTransactionManager создает новый менеджер транзакций
func NewTransactionManager(db TxBeginner, opts ...Option) *TransactionManager {
	m := &TransactionManager{
		db:          db,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию, без повторов
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, nil, fn)
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции.
// При конфликте сериализации транзакция уже откатена, поэтому fn повторяется целиком.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return m.retry(ctx, pgerrors.IsSerializationFailure, func() error {
		return m.run(ctx, opts, fn)
	})
}

// DoReadOnly выполняет fn в read-only транзакции, повторяя её при временной недоступности БД
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	opts := &sql.TxOptions{ReadOnly: true}
	return m.retry(ctx, pgerrors.IsTransient, func() error {
		return m.run(ctx, opts, fn)
	})
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов переиспользует внешнюю транзакцию
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommit, err)
	}

	return nil
}

func (m *TransactionManager) retry(ctx context.Context, retryable func(error) bool, attempt func() error) error {
	// Внутри внешней транзакции повторять бессмысленно: её откатит внешний вызов
	if dbmetrics.IsInTransaction(ctx) {
		return attempt()
	}

	delay := m.baseDelay
	var err error
	for i := 0; i < m.maxAttempts; i++ {
		err = attempt()
		if err == nil || !retryable(err) {
			return err
		}
		if i == m.maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
