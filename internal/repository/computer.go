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

const computerSelect = `
		SELECT c.id, c.manufacturer_id, m.name, c.serial_number, c.purchase_date,
			c.warranty_expiration_date, c.specifications, c.image_url, c.version,
			c.created_at, c.updated_at
		FROM computers c
		JOIN manufacturers m ON m.id = c.manufacturer_id`

// computerRepository is the PostgreSQL implementation of ComputerRepository.
type computerRepository struct {
	DB *sql.DB
}

// NewComputerRepository creates a new ComputerRepository.
func NewComputerRepository(db *sql.DB) ComputerRepository {
	return &computerRepository{DB: db}
}

func scanComputer(row rowScanner) (model.Computer, error) {
	var c model.Computer
	err := row.Scan(&c.ID, &c.ManufacturerID, &c.ManufacturerName, &c.SerialNumber, &c.PurchaseDate,
		&c.WarrantyExpirationDate, &c.Specifications, &c.ImageURL, &c.Version,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanComputers(rows *sql.Rows) ([]model.Computer, error) {
	defer rows.Close()

	computers := make([]model.Computer, 0)
	for rows.Next() {
		c, err := scanComputer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan computer: %w", err)
		}
		computers = append(computers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return computers, nil
}

// computerWhere renders the filter as a WHERE clause with positional args.
func computerWhere(filter ComputerFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.SerialNumber != "" {
		add("c.serial_number = $%d", filter.SerialNumber)
	}
	if filter.ExcludeID != nil {
		add("c.id <> $%d", *filter.ExcludeID)
	}
	if filter.ManufacturerID != nil {
		add("c.manufacturer_id = $%d", *filter.ManufacturerID)
	}
	if filter.WarrantyExpiresBefore != nil {
		add("c.warranty_expiration_date <= $%d", *filter.WarrantyExpiresBefore)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "\n\t\tWHERE " + strings.Join(conditions, " AND "), args
}

// GetByID retrieves a computer without its timelines.
func (r *computerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	row := r.DB.QueryRowContext(ctx, computerSelect+`
		WHERE c.id = $1`, id)

	c, err := scanComputer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrComputerNotFound
		}
		return nil, fmt.Errorf("failed to get computer by ID: %w", err)
	}
	return &c, nil
}

// GetWithCurrentAssignment retrieves a computer with both timelines loaded.
func (r *computerRepository) GetWithCurrentAssignment(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	computers := []model.Computer{*c}
	if err := loadTimelines(ctx, r.DB, computers); err != nil {
		return nil, err
	}
	return &computers[0], nil
}

// GetAllWithCurrentAssignments retrieves a page of computers with their timelines.
func (r *computerRepository) GetAllWithCurrentAssignments(ctx context.Context, params PaginationParams) (*PaginatedResult[model.Computer], error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, computerSelect+`
		ORDER BY c.serial_number
		OFFSET $1 LIMIT $2`, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query computers: %w", err)
	}

	computers, err := scanComputers(rows)
	if err != nil {
		return nil, err
	}

	var totalCount int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM computers`).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count of computers: %w", err)
	}

	if err := loadTimelines(ctx, r.DB, computers); err != nil {
		return nil, err
	}

	return &PaginatedResult[model.Computer]{
		Items:      computers,
		TotalCount: totalCount,
	}, nil
}

// Find retrieves every computer matching the filter, timelines included.
func (r *computerRepository) Find(ctx context.Context, filter ComputerFilter) ([]model.Computer, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	where, args := computerWhere(filter)
	rows, err := r.DB.QueryContext(ctx, computerSelect+where+`
		ORDER BY c.serial_number`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query computers: %w", err)
	}

	computers, err := scanComputers(rows)
	if err != nil {
		return nil, err
	}

	if err := loadTimelines(ctx, r.DB, computers); err != nil {
		return nil, err
	}
	return computers, nil
}

// Exists checks if any computer matches the filter
func (r *computerRepository) Exists(ctx context.Context, filter ComputerFilter) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, existsTimeout)
	defer cancel()

	where, args := computerWhere(filter)
	query := `SELECT EXISTS(SELECT 1 FROM computers c` + where + `)`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check computer existence: %w", err)
	}
	return exists, nil
}

// Add inserts a computer together with its initial timeline rows.
func (r *computerRepository) Add(ctx context.Context, computer *model.Computer) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return runInTx(ctx, r.DB, func(tx DBTX) error {
		return insertComputer(ctx, tx, computer)
	})
}

// AddAll inserts several computers in one transaction.
func (r *computerRepository) AddAll(ctx context.Context, computers []model.Computer) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	return runInTx(ctx, r.DB, func(tx DBTX) error {
		for i := range computers {
			if err := insertComputer(ctx, tx, &computers[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertComputer(ctx context.Context, tx DBTX, computer *model.Computer) error {
	if computer.Version == 0 {
		computer.Version = 1
	}
	if computer.CreatedAt.IsZero() {
		computer.CreatedAt = time.Now().UTC()
	}
	if computer.UpdatedAt.IsZero() {
		computer.UpdatedAt = computer.CreatedAt
	}

	query := `
		INSERT INTO computers (id, manufacturer_id, serial_number, purchase_date, warranty_expiration_date,
			specifications, image_url, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.ExecContext(ctx, query,
		computer.ID,
		computer.ManufacturerID,
		computer.SerialNumber,
		computer.PurchaseDate,
		computer.WarrantyExpirationDate,
		computer.Specifications,
		computer.ImageURL,
		computer.Version,
		computer.CreatedAt,
		computer.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err, "failed to create computer")
	}

	for _, sa := range computer.StatusAssignments {
		if err := insertStatusAssignment(ctx, tx, sa); err != nil {
			return err
		}
	}
	for _, ua := range computer.UserAssignments {
		if err := insertUserAssignment(ctx, tx, ua); err != nil {
			return err
		}
	}
	return nil
}

// Update writes the descriptive fields guarded by the version token, then
// closes and appends timeline rows, all in one transaction.
func (r *computerRepository) Update(ctx context.Context, computer *model.Computer, changes TimelineChanges) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err := runInTx(ctx, r.DB, func(tx DBTX) error {
		query := `
		UPDATE computers
		SET manufacturer_id = $1, serial_number = $2, purchase_date = $3, warranty_expiration_date = $4,
			specifications = $5, image_url = $6, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7 AND version = $8`

		result, err := tx.ExecContext(ctx, query,
			computer.ManufacturerID,
			computer.SerialNumber,
			computer.PurchaseDate,
			computer.WarrantyExpirationDate,
			computer.Specifications,
			computer.ImageURL,
			computer.ID,
			computer.Version,
		)
		if err != nil {
			return mapWriteError(err, "failed to update computer")
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM computers WHERE id = $1)`, computer.ID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check computer existence: %w", err)
			}
			if !exists {
				return ErrComputerNotFound
			}
			return ErrVersionConflict
		}

		for _, ua := range changes.ClosedAssignments {
			if err := closeUserAssignment(ctx, tx, ua); err != nil {
				return err
			}
		}
		for _, ua := range changes.NewAssignments {
			if err := insertUserAssignment(ctx, tx, ua); err != nil {
				return err
			}
		}
		for _, sa := range changes.NewStatuses {
			if err := insertStatusAssignment(ctx, tx, sa); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	computer.Version++
	return nil
}

// Remove deletes a computer; its timelines go with it through ON DELETE CASCADE.
func (r *computerRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctx, `DELETE FROM computers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete computer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrComputerNotFound
	}
	return nil
}
