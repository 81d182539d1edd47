package formfill

import (
	"strings"

	"golang.org/x/text/cases"

	"dirsubmit/internal/automation"
)

var fold = cases.Fold()

// MatchOption picks the option of a select control that best represents the
// wanted value: exact value or label match first (Unicode case-folded),
// then substring containment in either direction.
func MatchOption(options []automation.Option, want string) (automation.Option, bool) {
	wanted := fold.String(strings.TrimSpace(want))
	if wanted == "" {
		return automation.Option{}, false
	}

	for _, opt := range options {
		if fold.String(strings.TrimSpace(opt.Value)) == wanted || fold.String(strings.TrimSpace(opt.Label)) == wanted {
			return opt, true
		}
	}
	for _, opt := range options {
		value := fold.String(strings.TrimSpace(opt.Value))
		label := fold.String(strings.TrimSpace(opt.Label))
		if containsEither(value, wanted) || containsEither(label, wanted) {
			return opt, true
		}
	}
	return automation.Option{}, false
}

func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
