package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/service/identity/models"
	"github.com/m04kA/SMC-ParkingService/internal/testutil/memstore"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newService(t *testing.T) (*Service, *memstore.Store, *fixedClock) {
	t.Helper()
	store := memstore.New()
	clock := &fixedClock{now: time.Now()}
	svc := NewService(store.Users(), "test-secret", time.Hour, bcrypt.MinCost, false, nopLogger{})
	svc.timeProvider = clock
	return svc, store, clock
}

func registerRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		FirstName:   "Maria",
		LastName:    "Santos",
		Email:       "Maria.Santos@Example.com",
		Password:    "secret123",
		VehicleType: "motorcycle",
		PlateNumber: "xyz 987",
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "maria.santos@example.com", user.Email)
	assert.Equal(t, "regular", user.Role)
	assert.Equal(t, "motorcycle", user.VehicleType)
	assert.Equal(t, "XYZ 987", user.PlateNumber)
	assert.False(t, user.Active)

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "MARIA.santos@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.True(t, login.User.Active)

	active, err := store.Users().CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, active)

	principal, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID.String())
	assert.Equal(t, domain.RoleRegular, principal.Role)
	assert.False(t, principal.IsAdmin())

	require.NoError(t, svc.Logout(ctx, principal.UserID))
	active, err = store.Users().CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, active)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RegisterRequest)
	}{
		{"empty first name", func(r *models.RegisterRequest) { r.FirstName = " " }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *models.RegisterRequest) { r.Password = "123" }},
		{"unknown vehicle", func(r *models.RegisterRequest) { r.VehicleType = "truck" }},
		{"empty plate", func(r *models.RegisterRequest) { r.PlateNumber = "" }},
		{"unknown role", func(r *models.RegisterRequest) { r.Role = "root" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService(t)
			req := registerRequest()
			tt.mutate(req)

			_, err := svc.Register(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_AdminRequiresOptIn(t *testing.T) {
	svc, _, _ := newService(t)
	req := registerRequest()
	req.Role = "admin"

	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrAdminRegistrationDisabled)

	svc.allowAdmins = true
	user, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "maria.santos@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseToken_Rejects(t *testing.T) {
	svc, _, clock := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	login, err := svc.Login(ctx, &models.LoginRequest{Email: "maria.santos@example.com", Password: "secret123"})
	require.NoError(t, err)

	other := NewService(memstore.New().Users(), "other-secret", time.Hour, bcrypt.MinCost, false, nopLogger{})
	_, err = other.ParseToken(login.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	clock.now = clock.now.Add(2 * time.Hour)
	_, err = svc.ParseToken(login.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	svc, _, clock := newService(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_UnknownUser(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.Logout(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
