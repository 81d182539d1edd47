package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper reclaims capacity from tokens that exceeded the stale timeout.
// It only frees the slot; the orphaned job's unresolved directories are
// requeued by the aggregator's orphan pass on the next dispatch cycle.
type Sweeper struct {
	registry   *TokenRegistry
	interval   time.Duration
	staleAfter time.Duration
	logger     zerolog.Logger
}

// NewSweeper builds a sweeper over the registry.
func NewSweeper(registry *TokenRegistry, interval, staleAfter time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Sweeper{
		registry:   registry,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger.With().Str("component", "sweeper").Logger(),
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(time.Now())
		}
	}
}

// Sweep reclaims stale tokens as of now.
func (s *Sweeper) Sweep(now time.Time) int {
	stale := s.registry.SweepStale(now, s.staleAfter)
	for _, token := range stale {
		s.logger.Warn().
			Str("token_id", token.TokenID).
			Str("job_id", token.JobID).
			Dur("age", token.Age(now)).
			Msg("reclaimed stale processor token")
	}
	return len(stale)
}
