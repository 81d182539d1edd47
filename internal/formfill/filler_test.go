package formfill

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/automation/automationtest"
	"dirsubmit/internal/dirconfig"
	"dirsubmit/internal/domain"
)

var testBusiness = domain.BusinessProfile{
	Name:  "Acme Co",
	Email: "info@acme.test",
	Phone: "555-0100",
}

func testProfile() dirconfig.Profile {
	return dirconfig.Profile{
		DirectoryID:   "yellowbook",
		Name:          "YellowBook",
		SubmissionURL: "https://yellowbook.test/submit",
	}
}

func submittablePage() *automationtest.Page {
	page := automationtest.NewPage()
	page.Add("input[name='business_name']", visibleInput("f-name"))
	page.Add("input[name='email']", visibleInput("f-email"))
	page.Add("button[type='submit']", visibleInput("f-submit"))
	return page
}

func TestSubmitHappyPath(t *testing.T) {
	page := submittablePage()
	page.Add(".success", automation.Element{Ref: "banner", Tag: "div", Visible: true})

	outcome, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, testProfile(), testBusiness)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if outcome.Disposition != DispositionSubmitted {
		t.Fatalf("disposition = %s, want submitted", outcome.Disposition)
	}
	if !outcome.SuccessMarker {
		t.Fatal("success marker not recorded")
	}
	if got := page.Filled["f-name"]; got != "Acme Co" {
		t.Fatalf("business name filled with %q", got)
	}
	if len(page.Clicked) != 1 || page.Clicked[0] != "f-submit" {
		t.Fatalf("clicked %v, want single submit activation", page.Clicked)
	}
}

func TestSubmitWithoutSuccessMarkerStillSubmits(t *testing.T) {
	// No confirmation rendered after submit: the absence is recorded but
	// advisory, not a failure.
	page := submittablePage()

	outcome, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, testProfile(), testBusiness)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if outcome.Disposition != DispositionSubmitted {
		t.Fatalf("disposition = %s, want submitted", outcome.Disposition)
	}
	if outcome.SuccessMarker {
		t.Fatal("success marker reported on a page without one")
	}
}

func TestSubmitSkipsDeclaredCaptcha(t *testing.T) {
	page := submittablePage()
	profile := testProfile()
	profile.HasCaptcha = true

	outcome, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, profile, testBusiness)
	if !errors.Is(err, domain.ErrPolicyBlock) {
		t.Fatalf("error = %v, want ErrPolicyBlock", err)
	}
	if outcome.Disposition != DispositionSkipped {
		t.Fatalf("disposition = %s, want skipped", outcome.Disposition)
	}
	if len(page.Filled) != 0 {
		t.Fatalf("form touched despite CAPTCHA: %v", page.Filled)
	}
}

func TestSubmitSkipsDetectedCaptcha(t *testing.T) {
	page := submittablePage()
	page.HTML = `<div class="g-recaptcha"></div>`

	_, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, testProfile(), testBusiness)
	if !errors.Is(err, domain.ErrPolicyBlock) {
		t.Fatalf("error = %v, want ErrPolicyBlock", err)
	}
	if len(page.Clicked) != 0 {
		t.Fatal("submit activated despite CAPTCHA")
	}
}

func TestSubmitFailsWhenNoFieldsFill(t *testing.T) {
	page := automationtest.NewPage()
	page.Add("button[type='submit']", visibleInput("f-submit"))

	outcome, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, testProfile(), testBusiness)
	if !errors.Is(err, domain.ErrAutomation) {
		t.Fatalf("error = %v, want ErrAutomation", err)
	}
	if outcome.Disposition != DispositionFailed {
		t.Fatalf("disposition = %s, want failed", outcome.Disposition)
	}
	if len(page.Clicked) != 0 {
		t.Fatal("submit activated with an empty form")
	}
}

func TestSubmitFailsOnRejectionMarker(t *testing.T) {
	page := submittablePage()
	page.Add(".error-message", automation.Element{Ref: "err", Tag: "div", Visible: true})

	outcome, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, testProfile(), testBusiness)
	if !errors.Is(err, domain.ErrAutomation) {
		t.Fatalf("error = %v, want ErrAutomation", err)
	}
	if outcome.Disposition != DispositionFailed {
		t.Fatalf("disposition = %s, want failed", outcome.Disposition)
	}
}

func TestSubmitUsesExplicitMappingAndSelect(t *testing.T) {
	page := automationtest.NewPage()
	page.Add("#biz", visibleInput("f-name"))
	page.Add("select[name='category']", automation.Element{
		Ref: "f-cat", Tag: "select", Visible: true, Enabled: true,
		Options: []automation.Option{
			{Value: "other", Label: "Other"},
			{Value: "mfg", Label: "Manufacturing"},
		},
	})
	page.Add("button[type='submit']", visibleInput("f-submit"))

	profile := testProfile()
	profile.FieldMapping = map[string]string{"business_name": "#biz"}

	business := testBusiness
	business.Category = "Manufacturing"

	_, err := NewFiller(zerolog.Nop()).Submit(context.Background(), page, profile, business)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if got := page.Filled["f-name"]; got != "Acme Co" {
		t.Fatalf("explicit selector not used, filled %q", got)
	}
	if got := page.Selected["f-cat"]; got != "mfg" {
		t.Fatalf("category option %q, want mfg", got)
	}
}
