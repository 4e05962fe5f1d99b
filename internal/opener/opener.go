package opener

import (
	"context"
	"time"
)

// Outcome reports the result of one open-URL dispatch.
type Outcome struct {
	// Launched is true when the host-launch action was dispatched
	// successfully.
	Launched bool
	// Detail is a short human-readable result or error description.
	Detail string
	// Elapsed is how long the dispatch took from the handler's view.
	Elapsed time.Duration
}

// Opener instructs the host to open a URL in a browser.
//
// Launching browsers is target-platform-sensitive, so this interface
// abstracts over the production exec-based implementation and the no-op
// used for dry-run mode and tests. Implementations must return within a
// bounded time; ctx carries the per-request deadline.
type Opener interface {
	Open(ctx context.Context, url string) Outcome
}
