package repository

import (
	"computer-inventory-api/internal/model"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type manufacturerRepository struct {
	DB *sql.DB
}

// NewManufacturerRepository creates a new ManufacturerRepository.
func NewManufacturerRepository(db *sql.DB) ManufacturerRepository {
	return &manufacturerRepository{DB: db}
}

func (r *manufacturerRepository) getOne(ctx context.Context, where string, arg any) (*model.Manufacturer, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var m model.Manufacturer
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, serial_pattern FROM manufacturers `+where, arg).
		Scan(&m.ID, &m.Name, &m.SerialPattern)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrManufacturerNotFound
		}
		return nil, fmt.Errorf("failed to get manufacturer: %w", err)
	}
	return &m, nil
}

func (r *manufacturerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Manufacturer, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *manufacturerRepository) GetByName(ctx context.Context, name string) (*model.Manufacturer, error) {
	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *manufacturerRepository) GetAll(ctx context.Context) ([]model.Manufacturer, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, serial_pattern FROM manufacturers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query manufacturers: %w", err)
	}
	defer rows.Close()

	manufacturers := make([]model.Manufacturer, 0)
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.SerialPattern); err != nil {
			return nil, fmt.Errorf("failed to scan manufacturer: %w", err)
		}
		manufacturers = append(manufacturers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return manufacturers, nil
}

func (r *manufacturerRepository) AddAll(ctx context.Context, manufacturers []model.Manufacturer) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	return runInTx(ctx, r.DB, func(tx DBTX) error {
		for _, m := range manufacturers {
			if m.ID == uuid.Nil {
				m.ID = uuid.New()
			}
			_, err := tx.ExecContext(ctx, `
		INSERT INTO manufacturers (id, name, serial_pattern)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`, m.ID, m.Name, m.SerialPattern)
			if err != nil {
				return fmt.Errorf("failed to insert manufacturer %s: %w", m.Name, err)
			}
		}
		return nil
	})
}

type statusRepository struct {
	DB *sql.DB
}

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(db *sql.DB) StatusRepository {
	return &statusRepository{DB: db}
}

func (r *statusRepository) getOne(ctx context.Context, where string, arg any) (*model.ComputerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var s model.ComputerStatus
	err := r.DB.QueryRowContext(ctx, `SELECT id, name FROM computer_statuses `+where, arg).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return &s, nil
}

func (r *statusRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ComputerStatus, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*model.ComputerStatus, error) {
	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *statusRepository) GetAll(ctx context.Context) ([]model.ComputerStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM computer_statuses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer rows.Close()

	statuses := make([]model.ComputerStatus, 0)
	for rows.Next() {
		var s model.ComputerStatus
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return statuses, nil
}

func (r *statusRepository) AddAll(ctx context.Context, statuses []model.ComputerStatus) error {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	return runInTx(ctx, r.DB, func(tx DBTX) error {
		for _, s := range statuses {
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
			_, err := tx.ExecContext(ctx, `
		INSERT INTO computer_statuses (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING`, s.ID, s.Name)
			if err != nil {
				return fmt.Errorf("failed to insert status %s: %w", s.Name, err)
			}
		}
		return nil
	})
}

// NewPostgresStore wires the PostgreSQL repositories around one connection pool.
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Computers:     NewComputerRepository(db),
		Users:         NewUserRepository(db),
		Manufacturers: NewManufacturerRepository(db),
		Statuses:      NewStatusRepository(db),
	}
}
