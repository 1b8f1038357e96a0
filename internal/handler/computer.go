package handler

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/pkg/errors"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

// Constants for timeouts
const (
	DefaultTimeout     = 10 * time.Second
	LongRunningTimeout = 15 * time.Second
)

// ComputerHandler handles the HTTP requests for computers.
type ComputerHandler struct {
	Service ComputerService
	Logger  *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewComputerHandler creates a new ComputerHandler with dependencies and helpers
func NewComputerHandler(svc ComputerService, logger *log.Logger) *ComputerHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &ComputerHandler{
		Service:        svc,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// CreateComputerHandler handles the creation of a new computer.
func (h *ComputerHandler) CreateComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	var input model.ComputerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	computer, err := h.Service.CreateComputer(ctx, input)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "create computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Computer created successfully", computer)
}

// GetAllComputersHandler handles the retrieval of all computers with pagination.
func (h *ComputerHandler) GetAllComputersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	paginationParams := h.ResponseHelper.ParsePaginationParams(r)

	result, err := h.Service.ListComputers(ctx, paginationParams.Repository())
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "list computers")
		return
	}

	paginationMeta := h.ResponseHelper.CalculatePaginationMeta(paginationParams, result.TotalCount)
	responseData := h.ResponseHelper.CreatePaginatedListResponseData("computers", result.Items, paginationMeta)

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, responseData)
}

// GetComputerHandler handles the retrieval of a single computer by ID.
func (h *ComputerHandler) GetComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	computer, err := h.Service.GetComputer(ctx, id)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve computer")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, computer)
}

// UpdateComputerHandler replaces the editable fields of a computer.
func (h *ComputerHandler) UpdateComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	var input model.ComputerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	computer, err := h.Service.UpdateComputer(ctx, id, input)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "update computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer updated successfully", computer)
}

// UpdateComputerStatusHandler appends a status to the computer's timeline.
func (h *ComputerHandler) UpdateComputerStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	var input model.StatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.ErrorHandler.HandleJSONDecodeError(w, r, err)
		return
	}

	computer, err := h.Service.UpdateComputerStatus(ctx, id, input)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "update computer status")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer status updated successfully", computer)
}

// DeleteComputerHandler handles the deletion of a computer.
func (h *ComputerHandler) DeleteComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	id, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	if err := h.Service.DeleteComputer(ctx, id); err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "delete computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Computer deleted successfully", map[string]string{
		"id": id.String(),
	})
}

// ExpiringWarrantyHandler lists computers whose warranty ends within the
// requested number of days. Without a days parameter the configured
// threshold applies.
func (h *ComputerHandler) ExpiringWarrantyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, LongRunningTimeout)
	defer cancel()

	days := -1
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.ErrorHandler.HandleServiceError(w, r, errors.InvalidParameterError("days", raw), "parse days")
			return
		}
		days = parsed
	}

	computers, err := h.Service.ExpiringWarranty(ctx, days)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "list expiring warranties")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreateListResponseData("computers", computers, len(computers), nil))
}

// ValidateSerialNumberHandler checks a serial number against the
// manufacturer's pattern. The manufacturer may be given by ID or by name.
func (h *ComputerHandler) ValidateSerialNumberHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	query := r.URL.Query()
	manufacturer := query.Get("manufacturer_id")
	if manufacturer == "" {
		manufacturer = query.Get("manufacturer")
	}

	check, err := h.Service.ValidateSerialNumber(ctx, manufacturer, query.Get("serial_number"))
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "validate serial number")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, check)
}
