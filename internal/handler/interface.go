package handler

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/internal/service"
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ComputerService is the computer lifecycle used by ComputerHandler.
type ComputerService interface {
	CreateComputer(ctx context.Context, input model.ComputerInput) (*model.ComputerView, error)
	GetComputer(ctx context.Context, id uuid.UUID) (*model.ComputerView, error)
	ListComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.ComputerView], error)
	UpdateComputer(ctx context.Context, id uuid.UUID, input model.ComputerInput) (*model.ComputerView, error)
	UpdateComputerStatus(ctx context.Context, id uuid.UUID, input model.StatusInput) (*model.ComputerView, error)
	DeleteComputer(ctx context.Context, id uuid.UUID) error
	ExpiringWarranty(ctx context.Context, days int) ([]model.ComputerView, error)
	ValidateSerialNumber(ctx context.Context, manufacturer, serialNumber string) (model.SerialCheck, error)
}

// ReferenceService lists manufacturers and statuses.
type ReferenceService interface {
	ListManufacturers(ctx context.Context) ([]model.Manufacturer, error)
	ListStatuses(ctx context.Context) ([]model.ComputerStatus, error)
}

// UserService is the user directory used by UserHandler.
type UserService interface {
	CreateUser(ctx context.Context, input model.UserInput) (*model.UserView, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.UserView, error)
	GetUserByEmail(ctx context.Context, email string) (*model.UserView, error)
	ListUsers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult[model.UserView], error)
	UpdateUser(ctx context.Context, id uuid.UUID, input model.UserInput) (*model.UserView, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// AssignmentService opens and closes user assignments.
type AssignmentService interface {
	AssignComputer(ctx context.Context, computerID, userID uuid.UUID) (*model.AssignmentView, error)
	EndAssignment(ctx context.Context, computerID uuid.UUID, endDate time.Time) (*model.AssignmentView, error)
	GetCurrentAssignment(ctx context.Context, computerID uuid.UUID) (*model.AssignmentView, error)
	ComputerHistory(ctx context.Context, computerID uuid.UUID) ([]model.AssignmentView, error)
	UserHistory(ctx context.Context, userID uuid.UUID) ([]model.AssignmentView, error)
}

var (
	_ ComputerService   = (*service.ComputerService)(nil)
	_ ReferenceService  = (*service.ComputerService)(nil)
	_ UserService       = (*service.UserService)(nil)
	_ AssignmentService = (*service.AssignmentService)(nil)
)

// ComputerHandlerInterface defines the contract for computer HTTP handlers.
type ComputerHandlerInterface interface {
	CreateComputerHandler(w http.ResponseWriter, r *http.Request)
	GetAllComputersHandler(w http.ResponseWriter, r *http.Request)
	GetComputerHandler(w http.ResponseWriter, r *http.Request)
	UpdateComputerHandler(w http.ResponseWriter, r *http.Request)
	UpdateComputerStatusHandler(w http.ResponseWriter, r *http.Request)
	DeleteComputerHandler(w http.ResponseWriter, r *http.Request)
	ExpiringWarrantyHandler(w http.ResponseWriter, r *http.Request)
	ValidateSerialNumberHandler(w http.ResponseWriter, r *http.Request)
}

// UserHandlerInterface defines the contract for user HTTP handlers.
type UserHandlerInterface interface {
	CreateUserHandler(w http.ResponseWriter, r *http.Request)
	GetAllUsersHandler(w http.ResponseWriter, r *http.Request)
	GetUserHandler(w http.ResponseWriter, r *http.Request)
	GetUserByEmailHandler(w http.ResponseWriter, r *http.Request)
	UpdateUserHandler(w http.ResponseWriter, r *http.Request)
	DeleteUserHandler(w http.ResponseWriter, r *http.Request)
}

// AssignmentHandlerInterface defines the contract for assignment HTTP handlers.
type AssignmentHandlerInterface interface {
	AssignComputerHandler(w http.ResponseWriter, r *http.Request)
	EndAssignmentHandler(w http.ResponseWriter, r *http.Request)
	GetCurrentAssignmentHandler(w http.ResponseWriter, r *http.Request)
	GetComputerHistoryHandler(w http.ResponseWriter, r *http.Request)
	GetUserHistoryHandler(w http.ResponseWriter, r *http.Request)
}

// ReferenceHandlerInterface defines the contract for reference data and health.
type ReferenceHandlerInterface interface {
	GetManufacturersHandler(w http.ResponseWriter, r *http.Request)
	GetStatusesHandler(w http.ResponseWriter, r *http.Request)
	HealthHandler(w http.ResponseWriter, r *http.Request)
}

// Ensure handlers implement their interfaces at compile time
var (
	_ ComputerHandlerInterface   = (*ComputerHandler)(nil)
	_ UserHandlerInterface       = (*UserHandler)(nil)
	_ AssignmentHandlerInterface = (*AssignmentHandler)(nil)
	_ ReferenceHandlerInterface  = (*ReferenceHandler)(nil)
)
