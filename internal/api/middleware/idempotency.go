package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
	"github.com/m04kA/SMC-ParkingService/internal/infra/cache/idempotency"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	headerReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128

	msgInvalidIdempotencyKey = "некорректный Idempotency-Key"
	msgRequestInProgress     = "запрос с этим Idempotency-Key еще выполняется"
)

// Idempotency повторяет сохраненный ответ для POST/PATCH запросов с заголовком Idempotency-Key.
// Ключ действует в пределах пользователя, метода и пути. Ответы 5xx не сохраняются.
// Если store == nil, middleware ничего не делает.
func Idempotency(store IdempotencyStore, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			rawKey := strings.TrimSpace(r.Header.Get(headerIdempotencyKey))
			if rawKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(rawKey) > maxIdempotencyKeyLen {
				handlers.RespondBadRequest(w, msgInvalidIdempotencyKey)
				return
			}

			key := scopedKey(r, rawKey)
			ctx := r.Context()

			saved, err := store.Get(ctx, key)
			switch {
			case err == nil:
				replay(w, saved)
				return
			case !errors.Is(err, idempotency.ErrNotFound):
				// redis недоступен: обрабатываем запрос без идемпотентности
				logger.Warn("Idempotency: %s %s - store unavailable, passing through: %v", r.Method, r.URL.Path, err)
				next.ServeHTTP(w, r)
				return
			}

			if err := store.Lock(ctx, key); err != nil {
				if errors.Is(err, idempotency.ErrInProgress) {
					handlers.RespondConflict(w, msgRequestInProgress)
					return
				}
				logger.Warn("Idempotency: %s %s - lock failed, passing through: %v", r.Method, r.URL.Path, err)
				next.ServeHTTP(w, r)
				return
			}
			// запрос мог быть отменен по таймауту, а ключ нужно освободить
			storeCtx := context.WithoutCancel(ctx)
			defer func() {
				if err := store.Unlock(storeCtx, key); err != nil {
					logger.Warn("Idempotency: %s %s - unlock failed: %v", r.Method, r.URL.Path, err)
				}
			}()

			rw := newResponseWriter(w)
			rw.capture = true
			rw.body = &bytes.Buffer{}

			next.ServeHTTP(rw, r)

			if rw.status >= http.StatusInternalServerError {
				return
			}

			resp := &idempotency.Response{
				Status:      rw.status,
				ContentType: rw.Header().Get("Content-Type"),
				Body:        rw.body.Bytes(),
			}
			if err := store.Save(storeCtx, key, resp); err != nil {
				logger.Warn("Idempotency: %s %s - failed to save response: %v", r.Method, r.URL.Path, err)
			}
		})
	}
}

func scopedKey(r *http.Request, key string) string {
	user := "anonymous"
	if id, ok := GetUserID(r.Context()); ok {
		user = id.String()
	}
	return user + ":" + r.Method + ":" + r.URL.Path + ":" + key
}

func replay(w http.ResponseWriter, saved *idempotency.Response) {
	if saved.ContentType != "" {
		w.Header().Set("Content-Type", saved.ContentType)
	}
	w.Header().Set(headerReplayed, "true")
	w.WriteHeader(saved.Status)
	_, _ = w.Write(saved.Body)
}
