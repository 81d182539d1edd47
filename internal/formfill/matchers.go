// Package formfill implements the field-population half of the submission
// state machine: resolving semantic business fields to live form controls
// through explicit mappings with a declarative fallback table, matching
// select options, detecting CAPTCHA walls, and locating submit controls.
package formfill

import (
	"context"
	"fmt"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/domain"
)

// SemanticField names one logical business field a directory form may ask
// for. The constants double as the keys of a profile's field mapping.
type SemanticField string

const (
	FieldBusinessName SemanticField = "business_name"
	FieldEmail        SemanticField = "email"
	FieldPhone        SemanticField = "phone"
	FieldWebsite      SemanticField = "website"
	FieldAddress      SemanticField = "address"
	FieldCity         SemanticField = "city"
	FieldState        SemanticField = "state"
	FieldZip          SemanticField = "zip"
	FieldDescription  SemanticField = "description"
	FieldCategory     SemanticField = "category"
)

// AllFields lists every semantic field in fill order.
func AllFields() []SemanticField {
	return []SemanticField{
		FieldBusinessName,
		FieldAddress,
		FieldCity,
		FieldState,
		FieldZip,
		FieldPhone,
		FieldWebsite,
		FieldEmail,
		FieldDescription,
		FieldCategory,
	}
}

// ValueFor extracts the business value for a semantic field.
func ValueFor(b domain.BusinessProfile, field SemanticField) string {
	switch field {
	case FieldBusinessName:
		return b.Name
	case FieldEmail:
		return b.Email
	case FieldPhone:
		return b.Phone
	case FieldWebsite:
		return b.Website
	case FieldAddress:
		return b.Address
	case FieldCity:
		return b.City
	case FieldState:
		return b.State
	case FieldZip:
		return b.Zip
	case FieldDescription:
		return b.Description
	case FieldCategory:
		return b.Category
	}
	return ""
}

// fallbackSelectors is the declarative matcher table consulted when a
// directory profile has no explicit selector for a semantic field. Order is
// precedence: the first selector with a visible, enabled match wins.
var fallbackSelectors = map[SemanticField][]string{
	FieldBusinessName: {
		"input[name='business_name']",
		"input[name='company_name']",
		"input[name='name']",
		"input[id='businessName']",
		"input[id='companyName']",
		"#business-name",
		".business-name input",
	},
	FieldAddress: {
		"input[name='address']",
		"input[name='street']",
		"input[name='address1']",
		"input[id='address']",
		"textarea[name='address']",
		"#address",
		".address input",
	},
	FieldCity: {
		"input[name='city']",
		"input[id='city']",
		"#city",
		".city input",
	},
	FieldState: {
		"select[name='state']",
		"select[name='province']",
		"select[name='region']",
		"input[name='state']",
		"select[id='state']",
		"#state",
		".state select",
	},
	FieldZip: {
		"input[name='zip']",
		"input[name='zipcode']",
		"input[name='postal_code']",
		"input[name='postcode']",
		"input[id='zip']",
		"#zip",
		".zip input",
	},
	FieldPhone: {
		"input[name='phone']",
		"input[name='telephone']",
		"input[name='tel']",
		"input[type='tel']",
		"input[id='phone']",
		"#phone",
		".phone input",
	},
	FieldWebsite: {
		"input[name='website']",
		"input[name='url']",
		"input[name='web']",
		"input[type='url']",
		"input[id='website']",
		"#website",
		".website input",
	},
	FieldEmail: {
		"input[name='email']",
		"input[type='email']",
		"input[id='email']",
		"#email",
		".email input",
	},
	FieldDescription: {
		"textarea[name='description']",
		"textarea[name='about']",
		"textarea[name='bio']",
		"textarea[name='summary']",
		"textarea[id='description']",
		"#description",
		".description textarea",
	},
	FieldCategory: {
		"select[name='category']",
		"select[name='business_category']",
		"select[name='industry']",
		"select[name='type']",
		"select[id='category']",
		"#category",
		".category select",
	},
}

// FallbackSelectors returns the ordered fallback rules for a field.
func FallbackSelectors(field SemanticField) []string {
	return fallbackSelectors[field]
}

// submitSelectors locates a submit control when the profile names none.
var submitSelectors = []string{
	"button[type='submit']",
	"input[type='submit']",
	"button[name='submit']",
	"#submit",
	".submit-button",
	"form button",
}

// rejectionSelectors are markers a target renders when it refuses a
// submission outright.
var rejectionSelectors = []string{
	".error-message",
	".submission-error",
	".form-error",
	"[class*='rejected']",
}

// successSelectors confirm the target acknowledged the submission. Absence
// is recorded in the response log but does not fail the attempt on its own.
var successSelectors = []string{
	".success",
	".confirmation",
	"[class*='success']",
	".thank-you",
}

// ResolveField finds the first usable form control for a semantic field.
// The explicit selector (if any) is tried first, then the fallback table in
// order. A match must be visible and enabled.
func ResolveField(ctx context.Context, page automation.Page, field SemanticField, explicit string) (automation.Element, string, error) {
	selectors := fallbackSelectors[field]
	if explicit != "" {
		selectors = append([]string{explicit}, selectors...)
	}
	for _, selector := range selectors {
		elements, err := page.QuerySelectorAll(ctx, selector)
		if err != nil {
			return automation.Element{}, "", err
		}
		for _, el := range elements {
			if page.IsVisible(el) && page.IsEnabled(el) {
				return el, selector, nil
			}
		}
	}
	return automation.Element{}, "", fmt.Errorf("%w: no usable control for field %s", domain.ErrAutomation, field)
}

// ResolveSubmit finds a usable submit control, preferring the explicit
// profile selector.
func ResolveSubmit(ctx context.Context, page automation.Page, explicit string) (automation.Element, string, error) {
	selectors := submitSelectors
	if explicit != "" {
		selectors = append([]string{explicit}, selectors...)
	}
	for _, selector := range selectors {
		elements, err := page.QuerySelectorAll(ctx, selector)
		if err != nil {
			return automation.Element{}, "", err
		}
		for _, el := range elements {
			if page.IsVisible(el) && page.IsEnabled(el) {
				return el, selector, nil
			}
		}
	}
	return automation.Element{}, "", fmt.Errorf("%w: no usable submit control", domain.ErrAutomation)
}
