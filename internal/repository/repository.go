package repository

import (
	"computer-inventory-api/internal/model"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Custom errors for better error handling
var (
	ErrComputerNotFound        = errors.New("computer not found")
	ErrUserNotFound            = errors.New("user not found")
	ErrManufacturerNotFound    = errors.New("manufacturer not found")
	ErrStatusNotFound          = errors.New("status not found")
	ErrDuplicateSerial         = errors.New("computer with this serial number already exists")
	ErrDuplicateEmail          = errors.New("user with this email already exists")
	ErrVersionConflict         = errors.New("computer was modified concurrently")
	ErrComputerAlreadyAssigned = errors.New("computer already has an open assignment")
	ErrAssignmentClosed        = errors.New("assignment is already closed")
	ErrUserHasAssignments      = errors.New("user is referenced by assignments")
)

// PaginationParams holds pagination parameters for repository queries
type PaginationParams struct {
	Offset int
	Limit  int
}

// PaginatedResult holds paginated query results
type PaginatedResult[T any] struct {
	Items      []T
	TotalCount int
}

// ComputerFilter narrows computer queries. Zero values are ignored.
type ComputerFilter struct {
	SerialNumber          string
	ExcludeID             *uuid.UUID
	ManufacturerID        *uuid.UUID
	WarrantyExpiresBefore *time.Time
}

// UserFilter narrows user queries. Zero values are ignored.
type UserFilter struct {
	Email     string
	ExcludeID *uuid.UUID
}

// TimelineChanges are the timeline rows written together with a computer update.
type TimelineChanges struct {
	NewStatuses       []model.StatusAssignment
	NewAssignments    []model.UserAssignment
	ClosedAssignments []model.UserAssignment
}

// ComputerRepository persists computers together with their timelines.
type ComputerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	GetWithCurrentAssignment(ctx context.Context, id uuid.UUID) (*model.Computer, error)
	GetAllWithCurrentAssignments(ctx context.Context, params PaginationParams) (*PaginatedResult[model.Computer], error)
	Find(ctx context.Context, filter ComputerFilter) ([]model.Computer, error)
	Exists(ctx context.Context, filter ComputerFilter) (bool, error)
	// Add inserts the computer and its initial timeline rows.
	Add(ctx context.Context, computer *model.Computer) error
	AddAll(ctx context.Context, computers []model.Computer) error
	// Update writes descriptive fields and the timeline changes in one unit.
	// It fails with ErrVersionConflict when computer.Version is stale and
	// bumps computer.Version on success.
	Update(ctx context.Context, computer *model.Computer, changes TimelineChanges) error
	// Remove deletes the computer and both of its timelines.
	Remove(ctx context.Context, id uuid.UUID) error
}

// UserRepository persists users. Removing a user referenced by any
// assignment fails with ErrUserHasAssignments.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetWithCurrentComputers(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetWithAssignments(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetAllWithCurrentComputers(ctx context.Context, params PaginationParams) (*PaginatedResult[model.User], error)
	Exists(ctx context.Context, filter UserFilter) (bool, error)
	Add(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Remove(ctx context.Context, id uuid.UUID) error
}

// ManufacturerRepository reads manufacturer reference data.
type ManufacturerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Manufacturer, error)
	GetByName(ctx context.Context, name string) (*model.Manufacturer, error)
	GetAll(ctx context.Context) ([]model.Manufacturer, error)
	// AddAll inserts manufacturers whose name is not known yet.
	AddAll(ctx context.Context, manufacturers []model.Manufacturer) error
}

// StatusRepository reads computer status reference data.
type StatusRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ComputerStatus, error)
	GetByName(ctx context.Context, name string) (*model.ComputerStatus, error)
	GetAll(ctx context.Context) ([]model.ComputerStatus, error)
	// AddAll inserts statuses whose name is not known yet.
	AddAll(ctx context.Context, statuses []model.ComputerStatus) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Computers     ComputerRepository
	Users         UserRepository
	Manufacturers ManufacturerRepository
	Statuses      StatusRepository
}
