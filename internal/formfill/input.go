package formfill

import (
	"context"
	"math/rand"
	"time"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/dirconfig"
)

// Typist writes a value into a form control. Strategies are selected per
// directory profile; some targets discard values that arrive without
// keystroke events, so those get the incremental typist.
type Typist interface {
	Type(ctx context.Context, page automation.Page, el automation.Element, value string) error
}

// AtomicTypist sets the full value in a single call.
type AtomicTypist struct{}

func (AtomicTypist) Type(ctx context.Context, page automation.Page, el automation.Element, value string) error {
	return page.Fill(ctx, el, value)
}

// IncrementalTypist writes the value one rune at a time with jittered
// delays, emulating human typing cadence.
type IncrementalTypist struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	// Sleep is swappable for tests; nil means real sleeping.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (t IncrementalTypist) Type(ctx context.Context, page automation.Page, el automation.Element, value string) error {
	sleep := t.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	runes := []rune(value)
	for i := range runes {
		if err := page.Fill(ctx, el, string(runes[:i+1])); err != nil {
			return err
		}
		if i < len(runes)-1 {
			if err := sleep(ctx, t.jitter()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t IncrementalTypist) jitter() time.Duration {
	min, max := t.MinDelay, t.MaxDelay
	if min <= 0 {
		min = 30 * time.Millisecond
	}
	if max <= min {
		max = min + 90*time.Millisecond
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TypistFor maps a profile's input strategy to a typist.
func TypistFor(strategy dirconfig.InputStrategy) Typist {
	if strategy == dirconfig.InputIncremental {
		return IncrementalTypist{}
	}
	return AtomicTypist{}
}
