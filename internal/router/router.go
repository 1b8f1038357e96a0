package router

import (
	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/handler"
	"computer-inventory-api/internal/middleware"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handlers groups the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Computers   handler.ComputerHandlerInterface
	Users       handler.UserHandlerInterface
	Assignments handler.AssignmentHandlerInterface
	Reference   handler.ReferenceHandlerInterface
}

// NewRouter creates a new router and sets up the routes with security middleware.
func NewRouter(h Handlers, cfg *config.Config, logger *log.Logger) *mux.Router {
	r := mux.NewRouter()

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security, logger)
	loggingMW := middleware.NewLoggingMiddleware(logger)
	requestIDs := middleware.NewRequestIDGenerator()

	// Apply global middleware in order
	r.Use(requestIDs.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(securityMW.SecurityHeaders)
	r.Use(securityMW.CORS)
	r.Use(securityMW.TrustedProxy)
	r.Use(loggingMW.LogRequests)
	r.Use(securityMW.RateLimit)
	if cfg.Server.EnableMetrics {
		r.Use(middleware.Metrics)
	}
	r.Use(securityMW.RequestTimeout)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Static computer paths are registered before /computers/{id}.
	api.HandleFunc("/computers/expiring-warranty", h.Computers.ExpiringWarrantyHandler).Methods(http.MethodGet)
	api.HandleFunc("/computers/validate-serial-number", h.Computers.ValidateSerialNumberHandler).Methods(http.MethodGet)
	api.HandleFunc("/computers", h.Computers.CreateComputerHandler).Methods(http.MethodPost)
	api.HandleFunc("/computers", h.Computers.GetAllComputersHandler).Methods(http.MethodGet)
	api.HandleFunc("/computers/{id}", h.Computers.GetComputerHandler).Methods(http.MethodGet)
	api.HandleFunc("/computers/{id}", h.Computers.UpdateComputerHandler).Methods(http.MethodPut)
	api.HandleFunc("/computers/{id}", h.Computers.DeleteComputerHandler).Methods(http.MethodDelete)
	api.HandleFunc("/computers/{id}/status", h.Computers.UpdateComputerStatusHandler).Methods(http.MethodPut)

	api.HandleFunc("/users/by-email", h.Users.GetUserByEmailHandler).Methods(http.MethodGet)
	api.HandleFunc("/users", h.Users.CreateUserHandler).Methods(http.MethodPost)
	api.HandleFunc("/users", h.Users.GetAllUsersHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.Users.GetUserHandler).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.Users.UpdateUserHandler).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.Users.DeleteUserHandler).Methods(http.MethodDelete)

	api.HandleFunc("/assignments/computers/{id}/current", h.Assignments.GetCurrentAssignmentHandler).Methods(http.MethodGet)
	api.HandleFunc("/assignments/computers/{id}/history", h.Assignments.GetComputerHistoryHandler).Methods(http.MethodGet)
	api.HandleFunc("/assignments/computers/{id}/assign/{user_id}", h.Assignments.AssignComputerHandler).Methods(http.MethodPost)
	api.HandleFunc("/assignments/computers/{id}/end-assignment", h.Assignments.EndAssignmentHandler).Methods(http.MethodPost)
	api.HandleFunc("/assignments/users/{id}/history", h.Assignments.GetUserHistoryHandler).Methods(http.MethodGet)

	api.HandleFunc("/manufacturers", h.Reference.GetManufacturersHandler).Methods(http.MethodGet)
	api.HandleFunc("/statuses", h.Reference.GetStatusesHandler).Methods(http.MethodGet)

	// Health check
	api.HandleFunc("/health", h.Reference.HealthHandler).Methods(http.MethodGet)

	// Preflight requests only match this route, so CORS runs for them.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
