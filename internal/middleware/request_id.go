package middleware

import (
	"computer-inventory-api/internal/handler"
	"context"
	"crypto/rand"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// RequestIDGenerator produces sortable request IDs.
type RequestIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewRequestIDGenerator returns a generator backed by crypto/rand.
func NewRequestIDGenerator() *RequestIDGenerator {
	return &RequestIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// New returns a fresh ULID string.
func (g *RequestIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

// RequestID stores a request ID on the context and echoes it in the
// response. A well-formed client ID is kept; otherwise a ULID is generated.
func (g *RequestIDGenerator) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = g.New()
		}

		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), handler.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, c := range id {
		if c < 0x21 || c > 0x7e {
			return false
		}
	}
	return true
}
