package domain

import "time"

// ProcessorToken is the ephemeral handle for one job's claimed dispatch
// slot. Tokens live only in the coordinator's registry and are never
// persisted; a crash simply lets the stale sweep reclaim the slot.
type ProcessorToken struct {
	TokenID   string
	JobID     string
	Tier      PackageTier
	ClaimedAt time.Time
}

// Age returns how long ago the token was claimed.
func (t ProcessorToken) Age(now time.Time) time.Duration {
	return now.Sub(t.ClaimedAt)
}
