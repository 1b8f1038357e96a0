package repository

import (
	"computer-inventory-api/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userSelect = `
		SELECT u.id, u.first_name, u.last_name, u.email, u.created_at, u.updated_at
		FROM users u`

// userRepository is the PostgreSQL implementation of UserRepository.
type userRepository struct {
	DB *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func scanUser(row rowScanner) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	u, err := scanUser(r.DB.QueryRowContext(ctx, userSelect+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetByID retrieves a user without assignments.
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `
		WHERE u.id = $1`, id)
}

// GetByEmail retrieves a user by exact email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `
		WHERE u.email = $1`, email)
}

// GetWithCurrentComputers retrieves a user with their open assignments.
func (r *userRepository) GetWithCurrentComputers(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getWithAssignments(ctx, id, true)
}

// GetWithAssignments retrieves a user with their full assignment history.
func (r *userRepository) GetWithAssignments(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getWithAssignments(ctx, id, false)
}

func (r *userRepository) getWithAssignments(ctx context.Context, id uuid.UUID, openOnly bool) (*model.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	assignments, err := queryUserAssignments(ctx, r.DB, "user_id", []uuid.UUID{id}, openOnly)
	if err != nil {
		return nil, err
	}
	u.Assignments = assignments
	return u, nil
}

// GetAllWithCurrentComputers retrieves a page of users with their open assignments.
func (r *userRepository) GetAllWithCurrentComputers(ctx context.Context, params PaginationParams) (*PaginatedResult[model.User], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, userSelect+`
		ORDER BY u.last_name, u.first_name, u.email
		OFFSET $1 LIMIT $2`, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	var totalCount int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of users: %w", err)
	}

	if len(users) > 0 {
		ids := make([]uuid.UUID, len(users))
		index := make(map[uuid.UUID]int, len(users))
		for i, u := range users {
			ids[i] = u.ID
			index[u.ID] = i
		}

		assignments, err := queryUserAssignments(ctx, r.DB, "user_id", ids, true)
		if err != nil {
			return nil, err
		}
		for _, ua := range assignments {
			if i, ok := index[ua.UserID]; ok {
				users[i].Assignments = append(users[i].Assignments, ua)
			}
		}
	}

	return &PaginatedResult[model.User]{
		Items:      users,
		TotalCount: totalCount,
	}, nil
}

// Exists checks if any user matches the filter
func (r *userRepository) Exists(ctx context.Context, filter UserFilter) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, existsTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)
	if filter.Email != "" {
		args = append(args, filter.Email)
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)))
	}
	if filter.ExcludeID != nil {
		args = append(args, *filter.ExcludeID)
		conditions = append(conditions, fmt.Sprintf("id <> $%d", len(args)))
	}

	query := `SELECT EXISTS(SELECT 1 FROM users`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += `)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// Add inserts a new user.
func (r *userRepository) Add(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	query := `
		INSERT INTO users (id, first_name, last_name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "failed to create user")
	}
	return nil
}

// Update writes the user's descriptive fields.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4`

	result, err := r.DB.ExecContext(ctx, query, user.FirstName, user.LastName, user.Email, user.ID)
	if err != nil {
		return mapWriteError(err, "failed to update user")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Remove deletes a user. Assignments referencing the user make the
// foreign key reject the delete.
func (r *userRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if _, ok := pqConstraint(err, pgForeignKeyViolation); ok {
			return ErrUserHasAssignments
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
