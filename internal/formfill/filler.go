package formfill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/dirconfig"
	"dirsubmit/internal/domain"
)

// Disposition is the terminal state of one fill-and-submit pass.
type Disposition string

const (
	DispositionSubmitted Disposition = "submitted"
	DispositionFailed    Disposition = "failed"
	DispositionSkipped   Disposition = "skipped"
)

// FieldRecord notes how one semantic field was handled, for the response log.
type FieldRecord struct {
	Field    string `json:"field"`
	Selector string `json:"selector,omitempty"`
	Matched  bool   `json:"matched"`
	Note     string `json:"note,omitempty"`
}

// Outcome is the diagnostic payload of one submission attempt. It is
// serialized verbatim into the DirectoryResult response log.
type Outcome struct {
	Disposition    Disposition   `json:"disposition"`
	Reason         string        `json:"reason,omitempty"`
	Fields         []FieldRecord `json:"fields,omitempty"`
	SubmitSelector string        `json:"submit_selector,omitempty"`
	SuccessMarker  bool          `json:"success_marker"`
	Duration       string        `json:"duration,omitempty"`
}

// Filler runs the fill-and-submit pass over one loaded page.
type Filler struct {
	logger zerolog.Logger
}

// NewFiller builds a filler that logs under the given logger.
func NewFiller(logger zerolog.Logger) *Filler {
	return &Filler{logger: logger.With().Str("component", "formfill").Logger()}
}

// Submit populates the directory's form with the business data and activates
// the submit control. CAPTCHA detection runs first: a blocked page returns a
// skipped outcome and domain.ErrPolicyBlock without touching the form.
func (f *Filler) Submit(ctx context.Context, page automation.Page, profile dirconfig.Profile, business domain.BusinessProfile) (Outcome, error) {
	start := time.Now()

	blocked := profile.HasCaptcha
	if !blocked {
		detected, err := DetectCaptcha(ctx, page)
		if err != nil {
			return Outcome{Disposition: DispositionFailed, Reason: "captcha scan failed: " + err.Error()}, fmt.Errorf("captcha scan: %w", err)
		}
		blocked = detected
	}
	if blocked {
		f.logger.Info().Str("directory", profile.DirectoryID).Msg("captcha detected, skipping")
		return Outcome{
			Disposition: DispositionSkipped,
			Reason:      "requires manual completion",
			Duration:    time.Since(start).String(),
		}, domain.ErrPolicyBlock
	}

	typist := TypistFor(profile.Strategy())
	outcome := Outcome{Disposition: DispositionFailed}
	filled := 0

	for _, field := range AllFields() {
		value := ValueFor(business, field)
		if strings.TrimSpace(value) == "" {
			continue
		}
		record := FieldRecord{Field: string(field)}
		el, selector, err := ResolveField(ctx, page, field, profile.FieldMapping[string(field)])
		if err != nil {
			if errors.Is(err, domain.ErrAutomation) {
				record.Note = "no usable control"
				outcome.Fields = append(outcome.Fields, record)
				continue
			}
			outcome.Reason = err.Error()
			return outcome, fmt.Errorf("resolve %s: %w", field, err)
		}
		record.Selector = selector

		if el.Tag == "select" {
			opt, ok := MatchOption(el.Options, value)
			if !ok {
				record.Note = "no option matched"
				outcome.Fields = append(outcome.Fields, record)
				continue
			}
			if err := page.SelectOption(ctx, el, opt.Value); err != nil {
				record.Note = "select failed: " + err.Error()
				outcome.Fields = append(outcome.Fields, record)
				continue
			}
		} else {
			if err := typist.Type(ctx, page, el, value); err != nil {
				record.Note = "fill failed: " + err.Error()
				outcome.Fields = append(outcome.Fields, record)
				continue
			}
		}
		record.Matched = true
		outcome.Fields = append(outcome.Fields, record)
		filled++
	}

	if filled == 0 {
		outcome.Reason = "no fillable fields found"
		outcome.Duration = time.Since(start).String()
		return outcome, fmt.Errorf("%w: no fillable fields on %s", domain.ErrAutomation, profile.DirectoryID)
	}

	submitEl, submitSelector, err := ResolveSubmit(ctx, page, profile.SubmitSelector)
	if err != nil {
		outcome.Reason = "no usable submit control"
		outcome.Duration = time.Since(start).String()
		return outcome, err
	}
	outcome.SubmitSelector = submitSelector

	if err := page.Click(ctx, submitEl); err != nil {
		outcome.Reason = "submit activation failed: " + err.Error()
		outcome.Duration = time.Since(start).String()
		return outcome, fmt.Errorf("%w: click submit: %v", domain.ErrAutomation, err)
	}

	if rejected, marker := f.scanMarkers(ctx, page, rejectionSelectors); rejected {
		outcome.Reason = "target signaled rejection: " + marker
		outcome.Duration = time.Since(start).String()
		return outcome, fmt.Errorf("%w: target rejected submission", domain.ErrAutomation)
	}

	ok, _ := f.scanMarkers(ctx, page, successSelectors)
	outcome.Disposition = DispositionSubmitted
	outcome.SuccessMarker = ok
	outcome.Duration = time.Since(start).String()
	f.logger.Debug().
		Str("directory", profile.DirectoryID).
		Int("fields_filled", filled).
		Bool("success_marker", ok).
		Msg("submission activated")
	return outcome, nil
}

// scanMarkers checks a marker selector list against the post-submit page.
// Query errors are swallowed: a dead page after submit is not evidence
// either way.
func (f *Filler) scanMarkers(ctx context.Context, page automation.Page, selectors []string) (bool, string) {
	for _, selector := range selectors {
		elements, err := page.QuerySelectorAll(ctx, selector)
		if err != nil {
			return false, ""
		}
		for _, el := range elements {
			if page.IsVisible(el) {
				return true, selector
			}
		}
	}
	return false, ""
}
