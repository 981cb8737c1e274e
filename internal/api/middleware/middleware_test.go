package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/infra/cache/idempotency"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeParser struct {
	tokens map[string]models.Principal
}

func (p fakeParser) ParseToken(raw string) (*models.Principal, error) {
	principal, ok := p.tokens[raw]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &principal, nil
}

var (
	regularUser = models.Principal{UserID: uuid.New(), Role: domain.RoleRegular}
	adminUser   = models.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}
	parser      = fakeParser{tokens: map[string]models.Principal{
		"regular-token": regularUser,
		"admin-token":   adminUser,
	}}
)

// echoPrincipal отвечает ID пользователя из контекста
func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := GetPrincipal(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(p.UserID.String()))
	})
}

func TestAuth(t *testing.T) {
	handler := Auth(parser, nopLogger{})(echoPrincipal())

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"no header", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"wrong scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic regular-token") }, http.StatusUnauthorized, ""},
		{"bad token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") }, http.StatusUnauthorized, ""},
		{"valid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer regular-token") }, http.StatusOK, regularUser.UserID.String()},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer admin-token") }, http.StatusOK, adminUser.UserID.String()},
		{"query token on plain request", func(r *http.Request) {
			r.URL.RawQuery = "token=regular-token"
		}, http.StatusUnauthorized, ""},
		{"query token on websocket upgrade", func(r *http.Request) {
			r.URL.RawQuery = "token=regular-token"
			r.Header.Set("Upgrade", "websocket")
		}, http.StatusOK, regularUser.UserID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/active", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(echoPrincipal())

	tests := []struct {
		name       string
		ctx        func(ctx context.Context) context.Context
		wantStatus int
	}{
		{"no principal", func(ctx context.Context) context.Context { return ctx }, http.StatusUnauthorized},
		{"regular user", func(ctx context.Context) context.Context { return WithPrincipal(ctx, regularUser) }, http.StatusForbidden},
		{"admin", func(ctx context.Context) context.Context { return WithPrincipal(ctx, adminUser) }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
			req = req.WithContext(tt.ctx(req.Context()))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu  sync.Mutex
	got []observation
}

func (o *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, observation{method, route, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	observer := &recordingObserver{}

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(observer))
	r.HandleFunc("/api/v1/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil))

	require.Len(t, observer.got, 1)
	assert.Equal(t, observation{http.MethodGet, "/api/v1/bookings/{bookingId}", http.StatusNotFound}, observer.got[0])
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 2)
	rl.now = func() time.Time { return now }

	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/areas/parking3/slots", nil)
		req.RemoteAddr = ip + ":51234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)

	limited := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	// другой клиент не затронут
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2").Code)

	// через секунду корзина пополнилась
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1").Code)

	now = now.Add(visitorTTL + time.Second)
	rl.cleanup(visitorTTL)
	assert.Empty(t, rl.visitors)
}

type memoryIdempotencyStore struct {
	mu        sync.Mutex
	responses map[string]*idempotency.Response
	locks     map[string]bool
	getErr    error
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{
		responses: make(map[string]*idempotency.Response),
		locks:     make(map[string]bool),
	}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (*idempotency.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	resp, ok := s.responses[key]
	if !ok {
		return nil, idempotency.ErrNotFound
	}
	return resp, nil
}

func (s *memoryIdempotencyStore) Lock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] {
		return idempotency.ErrInProgress
	}
	s.locks[key] = true
	return nil
}

func (s *memoryIdempotencyStore) Unlock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

func (s *memoryIdempotencyStore) Save(_ context.Context, key string, resp *idempotency.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[key] = resp
	return nil
}

type countingHandler struct {
	mu     sync.Mutex
	calls  int
	status int
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	h.calls++
	calls := h.calls
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	_, _ = w.Write([]byte(`{"call":` + string(rune('0'+calls)) + `}`))
}

func idempotentRequest(method, key string, principal models.Principal) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/bookings", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(headerIdempotencyKey, key)
	}
	return req.WithContext(WithPrincipal(req.Context(), principal))
}

func TestIdempotency_ReplaysFirstResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	next := &countingHandler{status: http.StatusCreated}
	handler := Idempotency(store, nopLogger{})(next)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, idempotentRequest(http.MethodPost, "key-1", regularUser))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, idempotentRequest(http.MethodPost, "key-1", regularUser))

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(headerReplayed))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, next.calls)
	assert.Empty(t, store.locks)

	// тот же ключ другого пользователя - отдельный запрос
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, idempotentRequest(http.MethodPost, "key-1", adminUser))
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, other.Header().Get(headerReplayed))
}

func TestIdempotency_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		store  func() IdempotencyStore
		method string
		key    string
	}{
		{"no key", func() IdempotencyStore { return newMemoryIdempotencyStore() }, http.MethodPost, ""},
		{"GET request", func() IdempotencyStore { return newMemoryIdempotencyStore() }, http.MethodGet, "key-1"},
		{"store disabled", func() IdempotencyStore { return nil }, http.MethodPost, "key-1"},
		{"store unavailable", func() IdempotencyStore {
			s := newMemoryIdempotencyStore()
			s.getErr = idempotency.ErrStore
			return s
		}, http.MethodPost, "key-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &countingHandler{status: http.StatusOK}
			handler := Idempotency(tt.store(), nopLogger{})(next)

			for i := 0; i < 2; i++ {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, idempotentRequest(tt.method, tt.key, regularUser))
				assert.Equal(t, http.StatusOK, rec.Code)
			}
			assert.Equal(t, 2, next.calls)
		})
	}
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	store := newMemoryIdempotencyStore()
	next := &countingHandler{status: http.StatusServiceUnavailable}
	handler := Idempotency(store, nopLogger{})(next)

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), idempotentRequest(http.MethodPatch, "key-1", adminUser))
	}
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, store.responses)
}

func TestIdempotency_InProgress(t *testing.T) {
	store := newMemoryIdempotencyStore()
	req := idempotentRequest(http.MethodPost, "key-1", regularUser)
	store.locks[scopedKey(req, "key-1")] = true

	next := &countingHandler{status: http.StatusCreated}
	rec := httptest.NewRecorder()
	Idempotency(store, nopLogger{})(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 0, next.calls)
}

func TestIdempotency_RejectsLongKey(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	rec := httptest.NewRecorder()
	Idempotency(newMemoryIdempotencyStore(), nopLogger{})(next).
		ServeHTTP(rec, idempotentRequest(http.MethodPost, strings.Repeat("k", maxIdempotencyKeyLen+1), regularUser))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, next.calls)
}

func TestTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	inspect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	})

	start := time.Now()
	Timeout(5*time.Second)(inspect).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, start.Add(5*time.Second), deadline, time.Second)

	ws := httptest.NewRequest(http.MethodGet, "/api/v1/events/stream", nil)
	ws.Header.Set("Upgrade", "websocket")
	Timeout(5*time.Second)(inspect).ServeHTTP(httptest.NewRecorder(), ws)
	assert.False(t, hasDeadline)
}
