// concurrency/handler.go
/* Package concurrency caps the number of requests a Client has in flight at once.
Each dispatched request acquires a permit and is tagged with a uuid request ID, which
the dispatcher also sends as X-Request-ID. A limit of 0 disables the cap but still
issues request IDs. */
package concurrency

import (
	"context"
	"sync"
	"time"

	"github.com/deploymenttheory/go-api-user-client/logger"
	"github.com/google/uuid"
)

// ConcurrencyHandler controls the number of concurrent HTTP requests.
type ConcurrencyHandler struct {
	sem     chan struct{}
	logger  logger.Logger
	Metrics *ConcurrencyMetrics
}

// ConcurrencyMetrics captures permit usage for the client.
type ConcurrencyMetrics struct {
	TotalRequests  int64         // Total number of permits granted
	PermitWaitTime time.Duration // Total time spent waiting for permits
	InFlight       int64         // Permits currently held
	Lock           sync.Mutex    // Lock for all fields
}

// Snapshot returns a copy of the counters taken under the lock.
func (m *ConcurrencyMetrics) Snapshot() (totalRequests int64, permitWaitTime time.Duration, inFlight int64) {
	m.Lock.Lock()
	defer m.Lock.Unlock()
	return m.TotalRequests, m.PermitWaitTime, m.InFlight
}

// NewConcurrencyHandler initializes a new ConcurrencyHandler with the given
// concurrency limit, logger, and concurrency metrics.
func NewConcurrencyHandler(limit int, log logger.Logger, metrics *ConcurrencyMetrics) *ConcurrencyHandler {
	var sem chan struct{}
	if limit > 0 {
		sem = make(chan struct{}, limit)
	}
	if metrics == nil {
		metrics = &ConcurrencyMetrics{}
	}
	return &ConcurrencyHandler{
		sem:     sem,
		logger:  log,
		Metrics: metrics,
	}
}

// Limit returns the configured cap, 0 when unlimited.
func (ch *ConcurrencyHandler) Limit() int {
	return cap(ch.sem)
}

// RequestIDKey is the context key under which the request's uuid is stored.
type RequestIDKey struct{}

// RequestIDFromContext returns the request ID attached by AcquireConcurrencyPermit.
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey{}).(uuid.UUID)
	return id, ok
}
