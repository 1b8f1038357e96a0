package handler

import (
	"computer-inventory-api/internal/model"
	"computer-inventory-api/pkg/errors"
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// AssignmentHandler handles assigning computers to users and the
// assignment history endpoints.
type AssignmentHandler struct {
	Service AssignmentService
	Logger  *log.Logger

	ErrorHandler   *ErrorHandler
	ResponseHelper *ResponseHelper
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(svc AssignmentService, logger *log.Logger) *AssignmentHandler {
	if logger == nil {
		logger = log.Default()
	}

	return &AssignmentHandler{
		Service:        svc,
		Logger:         logger,
		ErrorHandler:   NewErrorHandler(logger),
		ResponseHelper: NewResponseHelper(),
	}
}

// AssignComputerHandler opens an assignment of the computer to the user.
func (h *AssignmentHandler) AssignComputerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	vars := mux.Vars(r)
	computerID, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", vars["id"])
	if !valid {
		return
	}
	userID, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "user_id", vars["user_id"])
	if !valid {
		return
	}

	assignment, err := h.Service.AssignComputer(ctx, computerID, userID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "assign computer")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusCreated, "Computer assigned successfully", assignment)
}

// EndAssignmentHandler closes the computer's open assignment. The body is
// optional; without an end_date the assignment ends now.
func (h *AssignmentHandler) EndAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	computerID, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	var input model.EndAssignmentInput
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !stderrors.Is(err, io.EOF) {
			h.ErrorHandler.HandleJSONDecodeError(w, r, err)
			return
		}
	}

	var endDate time.Time
	if input.EndDate != nil {
		endDate = *input.EndDate
	}

	assignment, err := h.Service.EndAssignment(ctx, computerID, endDate)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "end assignment")
		return
	}

	h.ErrorHandler.SendSuccessResponse(w, http.StatusOK, "Assignment ended successfully", assignment)
}

// GetCurrentAssignmentHandler returns the computer's open assignment, or
// 404 when the computer is not assigned.
func (h *AssignmentHandler) GetCurrentAssignmentHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	computerID, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	assignment, err := h.Service.GetCurrentAssignment(ctx, computerID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve current assignment")
		return
	}
	if assignment == nil {
		h.ErrorHandler.SendErrorResponse(w, r, http.StatusNotFound, "computer is not currently assigned", errors.ErrorCodeNotFound, nil)
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK, assignment)
}

// GetComputerHistoryHandler lists every assignment of a computer, newest first.
func (h *AssignmentHandler) GetComputerHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	computerID, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	history, err := h.Service.ComputerHistory(ctx, computerID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve computer history")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreateListResponseData("assignments", history, len(history), map[string]interface{}{
			"computer_id": computerID,
		}))
}

// GetUserHistoryHandler lists every assignment of a user, newest first.
func (h *AssignmentHandler) GetUserHistoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ResponseHelper.CreateRequestContext(r, DefaultTimeout)
	defer cancel()

	userID, valid := h.ErrorHandler.ParseAndValidateUUID(w, r, "id", mux.Vars(r)["id"])
	if !valid {
		return
	}

	history, err := h.Service.UserHistory(ctx, userID)
	if err != nil {
		h.ErrorHandler.HandleServiceError(w, r, err, "retrieve user history")
		return
	}

	h.ErrorHandler.SendJSONResponse(w, http.StatusOK,
		h.ResponseHelper.CreateListResponseData("assignments", history, len(history), map[string]interface{}{
			"user_id": userID,
		}))
}
