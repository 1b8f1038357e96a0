// Package serial validates computer serial numbers against the format each
// manufacturer publishes and checks them for uniqueness.
package serial

import (
	"computer-inventory-api/internal/repository"
	"computer-inventory-api/pkg/errors"
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry cache defaults.
const (
	DefaultCacheSize = 128
	DefaultCacheTTL  = 10 * time.Minute
)

var (
	patternCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_serial_pattern_cache_hits_total",
		Help: "Serial pattern lookups served from the cache.",
	})
	patternCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_serial_pattern_cache_misses_total",
		Help: "Serial pattern lookups that had to load the manufacturer.",
	})
)

// Pattern is a manufacturer's compiled serial number format.
type Pattern struct {
	ManufacturerID   uuid.UUID
	ManufacturerName string
	Source           string
	expr             *regexp.Regexp
}

// Matches reports whether the whole serial matches the pattern, case-sensitively.
func (p *Pattern) Matches(serial string) bool {
	return p.expr.MatchString(serial)
}

// Compile anchors the source so that it must match the whole value.
func Compile(manufacturerID uuid.UUID, name, source string) (*Pattern, error) {
	expr, err := regexp.Compile(`^(?:` + source + `)$`)
	if err != nil {
		return nil, err
	}
	return &Pattern{
		ManufacturerID:   manufacturerID,
		ManufacturerName: name,
		Source:           source,
		expr:             expr,
	}, nil
}

// Registry resolves manufacturers to compiled serial patterns. Patterns are
// data on the manufacturer record; compiled forms are kept in an expiring LRU.
type Registry struct {
	manufacturers repository.ManufacturerRepository
	cache         *expirable.LRU[uuid.UUID, *Pattern]
}

// NewRegistry creates a registry backed by the manufacturer repository.
func NewRegistry(manufacturers repository.ManufacturerRepository, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Registry{
		manufacturers: manufacturers,
		cache:         expirable.NewLRU[uuid.UUID, *Pattern](size, nil, ttl),
	}
}

// Lookup returns the compiled pattern of a manufacturer.
func (r *Registry) Lookup(ctx context.Context, manufacturerID uuid.UUID) (*Pattern, error) {
	if p, ok := r.cache.Get(manufacturerID); ok {
		patternCacheHits.Inc()
		return p, nil
	}
	patternCacheMisses.Inc()

	m, err := r.manufacturers.GetByID(ctx, manufacturerID)
	if err != nil {
		if stderrors.Is(err, repository.ErrManufacturerNotFound) {
			return nil, errors.ValidationError("manufacturer not found")
		}
		return nil, errors.DatabaseError("failed to load manufacturer", err)
	}

	if m.SerialPattern == "" {
		return nil, errors.ValidationError("pattern undefined")
	}

	p, err := Compile(m.ID, m.Name, m.SerialPattern)
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid pattern: %s", m.Name)).WithDetail("cause", err.Error())
	}

	r.cache.Add(manufacturerID, p)
	return p, nil
}

// Invalidate drops a cached pattern.
func (r *Registry) Invalidate(manufacturerID uuid.UUID) {
	r.cache.Remove(manufacturerID)
}

// Len returns the number of cached patterns.
func (r *Registry) Len() int {
	return r.cache.Len()
}
