package formfill

import (
	"context"
	"regexp"

	"dirsubmit/internal/automation"
)

// captchaMarkup matches the known CAPTCHA signatures in serialized page
// markup: reCAPTCHA and hCaptcha widgets, sitekey attributes, and generic
// captcha class names.
var captchaMarkup = regexp.MustCompile(`(?i)(g-recaptcha|hcaptcha|data-sitekey|captcha)`)

// captchaSelectors covers widgets injected as iframes after load, which a
// markup scan alone can miss.
var captchaSelectors = []string{
	".g-recaptcha",
	".h-captcha",
	"iframe[src*='recaptcha']",
	"iframe[src*='hcaptcha']",
	"[data-sitekey]",
}

// DetectCaptcha reports whether the page exposes a known CAPTCHA signature,
// scanning serialized markup first and widget selectors second.
func DetectCaptcha(ctx context.Context, page automation.Page) (bool, error) {
	html, err := page.Content(ctx)
	if err != nil {
		return false, err
	}
	if captchaMarkup.MatchString(html) {
		return true, nil
	}
	for _, selector := range captchaSelectors {
		elements, err := page.QuerySelectorAll(ctx, selector)
		if err != nil {
			return false, err
		}
		if len(elements) > 0 {
			return true, nil
		}
	}
	return false, nil
}
