package semjson

import "context"

// Pacer throttles long-running exports.
type Pacer interface {
	// Pace is called once per processed page and may block to shed load on
	// the host. Returns an error only if ctx is done.
	Pace(ctx context.Context) error
}
