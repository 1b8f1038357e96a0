package middleware

import (
	"computer-inventory-api/internal/handler"
	"computer-inventory-api/pkg/errors"
	"log"
	"net/http"
	"runtime/debug"
)

// Recovery turns a panicking handler into a 500 response.
func Recovery(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	errorHandler := handler.NewErrorHandler(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Printf("PANIC recovered: %v request_id=%s\n%s", rec, handler.RequestIDFromContext(r.Context()), debug.Stack())
					errorHandler.SendErrorResponse(w, r, http.StatusInternalServerError, "Internal Server Error", errors.ErrorCodeInternal, nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
