package handler

import (
	"computer-inventory-api/pkg/errors"
	"context"
	"encoding/json"
	stderrors "errors"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// ErrorHandler provides centralized error handling functionality for handlers
type ErrorHandler struct {
	Logger *log.Logger
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *log.Logger) *ErrorHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorHandler{
		Logger: logger,
	}
}

// SendErrorResponse sends a structured error response
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string, code errors.ErrorCode, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:     message,
		Code:      string(code),
		Details:   details,
		RequestID: RequestIDFromContext(r.Context()),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Printf("Failed to encode error response: %v", err)
	}
}

// SendSuccessResponse sends a structured success response
func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := SuccessResponse{
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Printf("Failed to encode success response: %v", err)
	}
}

// SendJSONResponse sends a generic JSON response
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		e.Logger.Printf("Failed to encode JSON response: %v", err)
	}
}

// HandleServiceError maps an error returned by a service to an HTTP response.
// Errors that are not AppErrors are reported as internal errors.
func (e *ErrorHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var appErr *errors.AppError
	if stderrors.Is(err, context.DeadlineExceeded) {
		appErr = errors.TimeoutError(operation)
	} else if found, ok := errors.AsAppError(err); ok {
		appErr = found
	} else {
		appErr = errors.InternalError("failed to "+operation, err)
	}

	if !appErr.IsClientError() {
		e.Logger.Printf("Error during %s: %v", operation, err)
	}

	e.SendErrorResponse(w, r, appErr.GetHTTPStatus(), appErr.Message, appErr.Code, appErr.Details)
}

// HandleJSONDecodeError handles JSON decoding errors
func (e *ErrorHandler) HandleJSONDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	e.Logger.Printf("JSON decode error: %v", err)
	appErr := errors.InvalidJSONError(err)
	e.SendErrorResponse(w, r, appErr.GetHTTPStatus(), appErr.Message, appErr.Code, nil)
}

// ParseAndValidateUUID parses the path parameter name as a UUID and writes a
// 400 response when it is missing or malformed.
func (e *ErrorHandler) ParseAndValidateUUID(w http.ResponseWriter, r *http.Request, name, idStr string) (uuid.UUID, bool) {
	if idStr == "" {
		e.HandleServiceError(w, r, errors.MissingParameterError(name), "parse "+name)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		e.SendErrorResponse(w, r, http.StatusBadRequest, "Invalid UUID format", errors.ErrorCodeInvalidParameter,
			map[string]interface{}{"parameter": name})
		return uuid.Nil, false
	}

	return id, true
}
