package formfill

import (
	"context"
	"testing"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/automation/automationtest"
)

func TestDetectCaptchaFromMarkup(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"recaptcha widget", `<div class="g-recaptcha" data-sitekey="abc"></div>`, true},
		{"hcaptcha widget", `<div class="h-captcha"></div>`, true},
		{"sitekey attribute only", `<div data-sitekey="xyz"></div>`, true},
		{"generic captcha class", `<img src="/captcha.png">`, true},
		{"mixed case", `<div class="G-Recaptcha"></div>`, true},
		{"plain form", `<form><input name="email"></form>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := automationtest.NewPage()
			page.HTML = tt.html
			got, err := DetectCaptcha(context.Background(), page)
			if err != nil {
				t.Fatalf("DetectCaptcha returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("DetectCaptcha = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectCaptchaFromInjectedWidget(t *testing.T) {
	page := automationtest.NewPage()
	page.HTML = `<form><input name="email"></form>`
	page.Add("iframe[src*='recaptcha']", automation.Element{Ref: "frame", Tag: "iframe", Visible: true})

	got, err := DetectCaptcha(context.Background(), page)
	if err != nil {
		t.Fatalf("DetectCaptcha returned error: %v", err)
	}
	if !got {
		t.Fatal("DetectCaptcha = false, want true for injected widget")
	}
}
