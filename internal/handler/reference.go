package handler

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"
)

// HealthTimeout bounds all dependency checks of one health request.
const HealthTimeout = 3 * time.Second

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// ReferenceHandler serves manufacturers, statuses and the health endpoint.
type ReferenceHandler struct {
	Service ReferenceService
	Checks  map[string]HealthCheck
	Logger  *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewReferenceHandler creates a new ReferenceHandler. checks may be nil.
func NewReferenceHandler(svc ReferenceService, checks map[string]HealthCheck, logger *log.Logger) *ReferenceHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &ReferenceHandler{
		Service:        svc,
		Checks:         checks,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// GetManufacturersHandler lists manufacturers and their serial patterns.
func (h *ReferenceHandler) GetManufacturersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	manufacturers, err := h.Service.ListManufacturers(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "list manufacturers")
		return
	}

	sort.Slice(manufacturers, func(i, j int) bool { return manufacturers[i].Name < manufacturers[j].Name })
	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreateListResponseData("manufacturers", manufacturers, len(manufacturers), nil))
}

// GetStatusesHandler lists the known computer statuses.
func (h *ReferenceHandler) GetStatusesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	statuses, err := h.Service.ListStatuses(ctx)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "list statuses")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreateListResponseData("statuses", statuses, len(statuses), nil))
}

// HealthHandler runs every registered check. The service is reported as
// degraded, with status 503, when any check fails.
func (h *ReferenceHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, HealthTimeout)
	defer cancel()

	results := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			h.Logger.Printf("Health check %s failed: %v", name, err)
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	healthData := h.ResponseHelper.CreateHealthCheckData(results)
	if healthData["status"] != "healthy" {
		h.ErrorHandler.SendSuccessResponse(w, http.StatusServiceUnavailable, "Service is degraded", healthData)
		return
	}
	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Service is healthy", healthData)
}
