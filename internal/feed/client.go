// internal/feed/client.go
package feed

import (
	"context"
	"errors"
)

// ErrUnavailable covers network failures, timeouts and non-2xx responses.
// The control loop skips the cycle and keeps the display as-is.
var ErrUnavailable = errors.New("feed: unavailable")

// ErrMalformed covers responses that arrive but cannot be decoded.
// The control loop treats the cycle as an empty snapshot.
var ErrMalformed = errors.New("feed: malformed response")

// Client fetches the current sky state.
// Implementations must be time-bounded and must not retry internally;
// retry policy belongs to the control loop.
type Client interface {
	Fetch(ctx context.Context) (Snapshot, error)
}
