package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deploymenttheory/go-api-user-client/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndReleasePermit(t *testing.T) {
	handler := NewConcurrencyHandler(2, logger.NewNopLogger(), nil)

	ctx, requestID, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)

	fromCtx, ok := RequestIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, requestID, fromCtx)

	total, _, inFlight := handler.Metrics.Snapshot()
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), inFlight)

	handler.ReleaseConcurrencyPermit(requestID)

	_, _, inFlight = handler.Metrics.Snapshot()
	assert.Equal(t, int64(0), inFlight)
	assert.Equal(t, 2, handler.Limit())
}

func TestAcquireHonoursContext(t *testing.T) {
	handler := NewConcurrencyHandler(1, logger.NewNopLogger(), nil)

	_, held, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)
	defer handler.ReleaseConcurrencyPermit(held)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err = handler.AcquireConcurrencyPermit(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimitIsEnforced(t *testing.T) {
	const limit = 3
	handler := NewConcurrencyHandler(limit, logger.NewNopLogger(), nil)

	var current, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, id, err := handler.AcquireConcurrencyPermit(context.Background())
			if err != nil {
				return
			}
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			handler.ReleaseConcurrencyPermit(id)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, int32(limit))
	total, _, inFlight := handler.Metrics.Snapshot()
	assert.Equal(t, int64(20), total)
	assert.Equal(t, int64(0), inFlight)
}

func TestUnlimitedHandlerStillIssuesRequestIDs(t *testing.T) {
	handler := NewConcurrencyHandler(0, logger.NewNopLogger(), nil)

	ctx, id, err := handler.AcquireConcurrencyPermit(context.Background())
	require.NoError(t, err)
	defer handler.ReleaseConcurrencyPermit(id)

	_, ok := RequestIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, 0, handler.Limit())
}
