package opener

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Noop satisfies Opener without touching the host. Used for dry-run mode,
// where the protocol path is exercised with zero side effects.
type Noop struct {
	logger zerolog.Logger
}

func NewNoop(logger zerolog.Logger) *Noop {
	return &Noop{logger: logger.With().Str("component", "opener").Logger()}
}

func (n *Noop) Open(_ context.Context, url string) Outcome {
	start := time.Now()
	n.logger.Info().Str("url", url).Msg("dry run, skipping launch")
	return Outcome{Launched: true, Detail: "dry run: ok", Elapsed: time.Since(start)}
}
