// concurrency/semaphore.go
package concurrency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcquireConcurrencyPermit blocks until a permit is available or ctx is done.
// On success it returns a derived context carrying the new request ID; the caller
// must pass that ID to ReleaseConcurrencyPermit.
func (ch *ConcurrencyHandler) AcquireConcurrencyPermit(ctx context.Context) (context.Context, uuid.UUID, error) {
	requestID := uuid.New()
	start := time.Now()

	if ch.sem != nil {
		select {
		case ch.sem <- struct{}{}:
		case <-ctx.Done():
			ch.logger.Warn("Failed to acquire concurrency permit",
				zap.String("RequestID", requestID.String()),
				zap.Error(ctx.Err()),
			)
			return ctx, requestID, ctx.Err()
		}
	}

	wait := time.Since(start)
	ch.Metrics.Lock.Lock()
	ch.Metrics.TotalRequests++
	ch.Metrics.PermitWaitTime += wait
	ch.Metrics.InFlight++
	ch.Metrics.Lock.Unlock()

	if ch.sem != nil {
		ch.logger.Debug("Acquired concurrency permit",
			zap.String("RequestID", requestID.String()),
			zap.Duration("AcquisitionTime", wait),
			zap.Int("UtilizedPermits", len(ch.sem)),
			zap.Int("AvailablePermits", cap(ch.sem)-len(ch.sem)),
		)
	}

	return context.WithValue(ctx, RequestIDKey{}, requestID), requestID, nil
}

// ReleaseConcurrencyPermit returns a permit to the pool.
func (ch *ConcurrencyHandler) ReleaseConcurrencyPermit(requestID uuid.UUID) {
	if ch.sem != nil {
		<-ch.sem
	}

	ch.Metrics.Lock.Lock()
	ch.Metrics.InFlight--
	ch.Metrics.Lock.Unlock()

	if ch.sem != nil {
		ch.logger.Debug("Released concurrency permit",
			zap.String("RequestID", requestID.String()),
			zap.Int("UtilizedPermits", len(ch.sem)),
			zap.Int("AvailablePermits", cap(ch.sem)-len(ch.sem)),
		)
	}
}
