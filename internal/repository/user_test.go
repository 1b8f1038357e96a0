package repository

import (
	"computer-inventory-api/internal/model"
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "first_name", "last_name", "email", "created_at", "updated_at"}

func setupUserRepo(t testing.TB) (*sql.DB, sqlmock.Sqlmock, UserRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewUserRepository(db)
}

func testUser() model.User {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return model.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func userRow(u model.User) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).AddRow(u.ID.String(), u.FirstName, u.LastName, u.Email, u.CreatedAt, u.UpdatedAt)
}

func TestGetUserByEmail(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE u.email = $1`)).
		WithArgs(user.Email).
		WillReturnRows(userRow(user))

	result, err := repo.GetByEmail(context.Background(), user.Email)

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.ID)
	assert.Equal(t, "Lovelace", result.LastName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE u.id = $1`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)

	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithCurrentComputers_OnlyOpenAssignments(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	user := testUser()
	computerID := uuid.NewString()
	start := user.CreatedAt.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE u.id = $1`)).
		WithArgs(user.ID).
		WillReturnRows(userRow(user))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ua.user_id = ANY($1::uuid[]) AND ua.end_date IS NULL`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userAssignmentColumns).
			AddRow(uuid.NewString(), computerID, user.ID.String(), start, nil, user.FirstName, user.LastName, user.Email, "ABC1234", "Dell"))

	result, err := repo.GetWithCurrentComputers(context.Background(), user.ID)

	require.NoError(t, err)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "ABC1234", result.Assignments[0].SerialNumber)
	assert.True(t, result.Assignments[0].IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllWithCurrentComputers(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY u.last_name, u.first_name, u.email OFFSET $1 LIMIT $2`)).
		WithArgs(10, 10).
		WillReturnRows(userRow(user))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`AND ua.end_date IS NULL`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userAssignmentColumns))

	result, err := repo.GetAllWithCurrentComputers(context.Background(), PaginationParams{Offset: 10, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 11, result.TotalCount)
	require.Len(t, result.Items, 1)
	assert.Empty(t, result.Items[0].Assignments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserExists_ExcludesSelf(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`)).
		WithArgs("ada@example.com", id).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), UserFilter{Email: "ada@example.com", ExcludeID: &id})

	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddUser_DuplicateEmail(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(user.ID, user.FirstName, user.LastName, user.Email, user.CreatedAt, user.UpdatedAt).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "users_email_key"})

	err := repo.Add(context.Background(), &user)

	assert.True(t, errors.Is(err, ErrDuplicateEmail))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_NotFound(t *testing.T) {
	db, mock, repo := setupUserRepo(t)
	defer db.Close()

	user := testUser()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(user.FirstName, user.LastName, user.Email, user.ID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &user)

	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveUser(t *testing.T) {
	t.Run("referenced by assignments", func(t *testing.T) {
		db, mock, repo := setupUserRepo(t)
		defer db.Close()

		id := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnError(&pq.Error{Code: pgForeignKeyViolation, Constraint: "computer_user_assignments_user_id_fkey"})

		err := repo.Remove(context.Background(), id)

		assert.True(t, errors.Is(err, ErrUserHasAssignments))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock, repo := setupUserRepo(t)
		defer db.Close()

		id := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Remove(context.Background(), id)

		assert.True(t, errors.Is(err, ErrUserNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
