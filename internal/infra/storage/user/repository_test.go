package user

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var testNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func userRows(users ...domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows(userColumns)
	for _, u := range users {
		rows.AddRow(u.ID.String(), u.FirstName, u.LastName, u.Email, u.PasswordHash,
			string(u.VehicleType), u.PlateNumber, string(u.Role), u.Active, testNow, testNow)
	}
	return rows
}

func testUser() domain.User {
	return domain.User{
		ID:           uuid.New(),
		FirstName:    "Ana",
		LastName:     "Reyes",
		Email:        "ana@example.com",
		PasswordHash: "$2a$04$hash",
		VehicleType:  domain.VehicleCar,
		PlateNumber:  "ABC 1234",
		Role:         domain.RoleRegular,
		Active:       true,
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)
	u := testUser()

	mock.ExpectQuery(`^INSERT INTO users \(.+\) VALUES \(.+\) RETURNING created_at, updated_at$`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintEmailKey})

	_, err := repo.Create(context.Background(), &u)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)
	want := testUser()

	query := "SELECT " + strings.Join(userColumns, ", ") + " FROM users WHERE LOWER(email) = $1"
	mock.ExpectQuery("^"+regexp.QuoteMeta(query)+"$").
		WithArgs("ana@example.com").
		WillReturnRows(userRows(want))

	got, err := repo.GetByEmail(context.Background(), "Ana@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, domain.RoleRegular, got.Role)
	assert.True(t, got.Active)
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRepository(db)
	id := uuid.New()

	query := "SELECT " + strings.Join(userColumns, ", ") + " FROM users WHERE id = $1"
	mock.ExpectQuery("^" + regexp.QuoteMeta(query) + "$").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetByIDs(t *testing.T) {
	t.Run("empty input skips the query", func(t *testing.T) {
		db, _ := newMock(t)
		repo := NewRepository(db)

		users, err := repo.GetByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("indexed by id", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)
		first, second := testUser(), testUser()

		query := "SELECT " + strings.Join(userColumns, ", ") + " FROM users WHERE id IN ($1,$2)"
		mock.ExpectQuery("^"+regexp.QuoteMeta(query)+"$").
			WithArgs(first.ID.String(), second.ID.String()).
			WillReturnRows(userRows(first, second))

		users, err := repo.GetByIDs(context.Background(), []uuid.UUID{first.ID, second.ID})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Ana", users[second.ID].FirstName)
	})
}

func TestSetActive(t *testing.T) {
	const query = "UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2"

	t.Run("existing user", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)
		id := uuid.New()

		mock.ExpectExec("^"+regexp.QuoteMeta(query)+"$").
			WithArgs(false, id.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetActive(context.Background(), id, false))
	})

	t.Run("unknown user", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewRepository(db)

		mock.ExpectExec("^" + regexp.QuoteMeta(query) + "$").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetActive(context.Background(), uuid.New(), true)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
