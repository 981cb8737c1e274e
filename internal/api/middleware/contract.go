package middleware

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/infra/cache/idempotency"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

// TokenParser проверяет bearer токен
type TokenParser interface {
	ParseToken(raw string) (*models.Principal, error)
}

// HTTPObserver получатель HTTP метрик
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// IdempotencyStore хранилище ответов по Idempotency-Key
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*idempotency.Response, error)
	Lock(ctx context.Context, key string) error
	Unlock(ctx context.Context, key string) error
	Save(ctx context.Context, key string, resp *idempotency.Response) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
