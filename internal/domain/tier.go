package domain

import "time"

// TierConfig captures the scheduling knobs a package tier carries: its
// priority score (lower runs first), the cap on concurrently processing
// jobs, the retry budget per directory, and the pacing delay inserted
// between successive directory attempts.
type TierConfig struct {
	Tier          PackageTier
	PriorityScore int
	MaxConcurrent int
	RetryBudget   int
	PacingDelay   time.Duration
}

// Premium tiers pace slower on purpose: the longer gap between attempts
// keeps submissions from tripping target-site rate heuristics.
var tierConfigs = map[PackageTier]TierConfig{
	TierEnterprise: {
		Tier:          TierEnterprise,
		PriorityScore: 1,
		MaxConcurrent: 5,
		RetryBudget:   5,
		PacingDelay:   2 * time.Second,
	},
	TierProfessional: {
		Tier:          TierProfessional,
		PriorityScore: 2,
		MaxConcurrent: 3,
		RetryBudget:   3,
		PacingDelay:   1500 * time.Millisecond,
	},
	TierGrowth: {
		Tier:          TierGrowth,
		PriorityScore: 3,
		MaxConcurrent: 2,
		RetryBudget:   2,
		PacingDelay:   time.Second,
	},
	TierStarter: {
		Tier:          TierStarter,
		PriorityScore: 4,
		MaxConcurrent: 1,
		RetryBudget:   1,
		PacingDelay:   500 * time.Millisecond,
	},
}

// TierConfigFor returns the configuration for the given tier. Unknown tiers
// fall back to the Starter configuration so a malformed job can never claim
// more capacity than the cheapest package.
func TierConfigFor(tier PackageTier) TierConfig {
	if cfg, ok := tierConfigs[tier]; ok {
		return cfg
	}
	return tierConfigs[TierStarter]
}

// KnownTier reports whether the tier is one of the sold package levels.
func KnownTier(tier PackageTier) bool {
	_, ok := tierConfigs[tier]
	return ok
}

// TiersByPriority lists all tiers ordered highest priority first
// (Enterprise before Starter).
func TiersByPriority() []PackageTier {
	return []PackageTier{TierEnterprise, TierProfessional, TierGrowth, TierStarter}
}
