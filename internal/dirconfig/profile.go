// Package dirconfig loads and serves per-directory submission profiles:
// where a directory's submission form lives, how its fields map to the
// semantic business fields, and which quirks (CAPTCHA, account walls,
// typing strategy) the executor must honor.
package dirconfig

import (
	"fmt"
	"strings"

	"dirsubmit/internal/domain"
)

// InputStrategy selects how field values are written into form controls.
type InputStrategy string

const (
	// InputAtomic sets the full value in one call.
	InputAtomic InputStrategy = "atomic"
	// InputIncremental types the value rune by rune with jitter. Some
	// directories reject values that appear without keystroke events.
	InputIncremental InputStrategy = "incremental"
)

// Profile describes one external directory target.
type Profile struct {
	DirectoryID     string            `yaml:"directory_id" json:"directory_id"`
	Name            string            `yaml:"name" json:"name"`
	SubmissionURL   string            `yaml:"submission_url" json:"submission_url"`
	FieldMapping    map[string]string `yaml:"field_mapping" json:"field_mapping"`
	SubmitSelector  string            `yaml:"submit_selector" json:"submit_selector"`
	HasCaptcha      bool              `yaml:"has_captcha" json:"has_captcha"`
	RequiresAccount bool              `yaml:"requires_account" json:"requires_account"`
	InputStrategy   InputStrategy     `yaml:"input_strategy" json:"input_strategy"`
}

// Validate checks the profile is dispatchable.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.DirectoryID) == "" {
		return fmt.Errorf("%w: directory profile missing directory_id", domain.ErrValidation)
	}
	if strings.TrimSpace(p.SubmissionURL) == "" {
		return fmt.Errorf("%w: directory %s missing submission_url", domain.ErrValidation, p.DirectoryID)
	}
	switch p.InputStrategy {
	case "", InputAtomic, InputIncremental:
	default:
		return fmt.Errorf("%w: directory %s has unknown input strategy %q", domain.ErrValidation, p.DirectoryID, p.InputStrategy)
	}
	return nil
}

// Strategy returns the configured input strategy, defaulting to atomic.
func (p *Profile) Strategy() InputStrategy {
	if p.InputStrategy == "" {
		return InputAtomic
	}
	return p.InputStrategy
}
