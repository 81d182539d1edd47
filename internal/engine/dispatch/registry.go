// Package dispatch claims pending jobs under global and per-tier
// concurrency caps and fans them out to submission executors.
package dispatch

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"dirsubmit/internal/domain"
)

// ErrJobAlreadyClaimed reports a claim for a job that already holds a
// token. Distinct from capacity exhaustion: the registry may have free
// slots.
var ErrJobAlreadyClaimed = errors.New("job already holds a processor token")

// TokenRegistry is the explicit bookkeeping of claimed dispatch slots. All
// mutation goes through the mutex, so token state is consistent regardless
// of which goroutine releases a slot.
type TokenRegistry struct {
	mu     sync.Mutex
	max    int
	tokens map[string]domain.ProcessorToken
}

// NewTokenRegistry builds a registry bounded at maxGlobal concurrent tokens.
func NewTokenRegistry(maxGlobal int) *TokenRegistry {
	return &TokenRegistry{max: maxGlobal, tokens: map[string]domain.ProcessorToken{}}
}

// Claim issues a token for the job, or ErrCapacityExhausted when the global
// cap is reached. A job never holds two tokens; a duplicate claim returns
// ErrJobAlreadyClaimed.
func (r *TokenRegistry) Claim(jobID string, tier domain.PackageTier) (domain.ProcessorToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) >= r.max {
		return domain.ProcessorToken{}, domain.ErrCapacityExhausted
	}
	for _, t := range r.tokens {
		if t.JobID == jobID {
			return domain.ProcessorToken{}, ErrJobAlreadyClaimed
		}
	}
	token := domain.ProcessorToken{
		TokenID:   uuid.NewString(),
		JobID:     jobID,
		Tier:      tier,
		ClaimedAt: time.Now(),
	}
	r.tokens[token.TokenID] = token
	return token, nil
}

// Release frees the slot held by the token. Releasing an already-swept
// token is a no-op.
func (r *TokenRegistry) Release(tokenID string) {
	r.mu.Lock()
	delete(r.tokens, tokenID)
	r.mu.Unlock()
}

// Active returns the number of claimed slots.
func (r *TokenRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// Available returns the number of free slots.
func (r *TokenRegistry) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.max - len(r.tokens)
	if n < 0 {
		n = 0
	}
	return n
}

// ActiveInTier counts claimed slots held by jobs of the tier.
func (r *TokenRegistry) ActiveInTier(tier domain.PackageTier) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.Tier == tier {
			n++
		}
	}
	return n
}

// ActiveJobIDs lists the jobs currently holding a token.
func (r *TokenRegistry) ActiveJobIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.tokens))
	for _, t := range r.tokens {
		ids = append(ids, t.JobID)
	}
	return ids
}

// SweepStale removes and returns every token older than maxAge. The freed
// slots are available to the next dispatch cycle immediately.
func (r *TokenRegistry) SweepStale(now time.Time, maxAge time.Duration) []domain.ProcessorToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []domain.ProcessorToken
	for id, t := range r.tokens {
		if t.Age(now) > maxAge {
			stale = append(stale, t)
			delete(r.tokens, id)
		}
	}
	return stale
}
