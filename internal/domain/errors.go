package domain

import "errors"

var (
	// ErrValidation marks malformed job or directory configuration.
	// Rejected before dispatch; never consumes capacity or retry budget.
	ErrValidation = errors.New("validation failed")

	// ErrTransientIO marks store or network unavailability. The affected
	// operation is retried on the next coordinator tick.
	ErrTransientIO = errors.New("transient io failure")

	// ErrAutomation marks a selector or control that could not be found or
	// interacted with. Counts against the directory's retry budget.
	ErrAutomation = errors.New("automation failure")

	// ErrPolicyBlock marks a CAPTCHA or manual-only condition. The
	// directory is skipped terminally and excluded from retry accounting.
	ErrPolicyBlock = errors.New("requires manual completion")

	// ErrCapacityExhausted signals no free dispatch slot. Not a failure;
	// the job simply stays pending.
	ErrCapacityExhausted = errors.New("capacity exhausted")

	ErrJobNotFound       = errors.New("job not found")
	ErrDirectoryNotFound = errors.New("directory not found")
)

// IsTransient reports whether the error should be retried on the next tick
// rather than recorded as a directory failure.
func IsTransient(err error) bool { return errors.Is(err, ErrTransientIO) }

// IsPolicyBlock reports whether the error is a terminal skip condition.
func IsPolicyBlock(err error) bool { return errors.Is(err, ErrPolicyBlock) }

// IsValidation reports whether the error is a configuration problem that
// retrying cannot heal.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
