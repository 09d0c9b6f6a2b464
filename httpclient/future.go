// httpclient/future.go
package httpclient

import (
	"context"

	"github.com/deploymenttheory/go-api-user-client/response"
)

// Future is the pending result of SendAsync. It settles exactly once.
type Future struct {
	done     chan struct{}
	envelope *response.Envelope
	err      error
}

// SendAsync dispatches desc on its own goroutine. Cancelling ctx cancels the request itself.
func (c *Client) SendAsync(ctx context.Context, desc Descriptor) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.envelope, f.err = c.Send(ctx, desc)
	}()
	return f
}

// Done is closed once the request has settled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the request settles or ctx is done. Giving up on ctx only stops
// the wait; the request keeps the context it was sent with.
func (f *Future) Await(ctx context.Context) (*response.Envelope, error) {
	select {
	case <-f.done:
		return f.envelope, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
