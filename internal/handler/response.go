package handler

import (
	"computer-inventory-api/internal/repository"
	"context"
	"net/http"
	"strconv"
	"time"
)

// ResponseHelper provides common response utilities and context management
type ResponseHelper struct{}

// NewResponseHelper creates a new ResponseHelper instance
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// ContextKey type for context keys to avoid collisions
type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// SuccessResponse wraps command results.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PaginationParams holds pagination parameters
type PaginationParams struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// Repository converts the parameters to the repository form.
func (p PaginationParams) Repository() repository.PaginationParams {
	return repository.PaginationParams{Offset: p.Offset, Limit: p.Limit}
}

// PaginationMeta holds pagination metadata for responses
type PaginationMeta struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"page_size"`
	TotalItems   int  `json:"total_items"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page,omitempty"`
	PreviousPage *int `json:"previous_page,omitempty"`
}

// Default pagination constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1
)

// ParsePaginationParams reads page and page_size. Invalid values fall back
// to the defaults rather than failing the request.
func (rh *ResponseHelper) ParsePaginationParams(r *http.Request) PaginationParams {
	query := r.URL.Query()

	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	pageSize := DefaultPageSize
	if pageSizeStr := query.Get("page_size"); pageSizeStr != "" {
		if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps >= MinPageSize && ps <= MaxPageSize {
			pageSize = ps
		}
	}

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}
}

// CalculatePaginationMeta calculates pagination metadata
func (rh *ResponseHelper) CalculatePaginationMeta(params PaginationParams, totalItems int) PaginationMeta {
	totalPages := (totalItems + params.PageSize - 1) / params.PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	hasNext := params.Page < totalPages
	hasPrevious := params.Page > 1

	var nextPage, previousPage *int
	if hasNext {
		next := params.Page + 1
		nextPage = &next
	}
	if hasPrevious {
		prev := params.Page - 1
		previousPage = &prev
	}

	return PaginationMeta{
		Page:         params.Page,
		PageSize:     params.PageSize,
		TotalItems:   totalItems,
		TotalPages:   totalPages,
		HasNext:      hasNext,
		HasPrevious:  hasPrevious,
		NextPage:     nextPage,
		PreviousPage: previousPage,
	}
}

// CreateRequestContext creates a context with timeout. The request ID set by
// the middleware is already on r's context; a client-supplied X-Request-ID
// is used when the middleware did not run.
func (rh *ResponseHelper) CreateRequestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)

	if RequestIDFromContext(ctx) == "" {
		if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
			ctx = context.WithValue(ctx, RequestIDKey, requestID)
		}
	}

	return ctx, cancel
}

// RequestIDFromContext extracts request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// CreatePaginatedListResponseData creates response data for paginated list
// operations; items are stored under key.
func (rh *ResponseHelper) CreatePaginatedListResponseData(key string, items interface{}, pagination PaginationMeta) map[string]interface{} {
	return map[string]interface{}{
		key:          items,
		"pagination": pagination,
	}
}

// CreateListResponseData creates response data for unpaginated lists.
func (rh *ResponseHelper) CreateListResponseData(key string, items interface{}, count int, additionalData map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		key:     items,
		"count": count,
	}
	for k, v := range additionalData {
		data[k] = v
	}
	return data
}

// CreateHealthCheckData creates health check response data
func (rh *ResponseHelper) CreateHealthCheckData(checks map[string]string) map[string]interface{} {
	status := "healthy"
	for _, result := range checks {
		if result != "ok" {
			status = "degraded"
		}
	}
	return map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"service":   "computer-inventory-api",
		"status":    status,
		"checks":    checks,
	}
}
