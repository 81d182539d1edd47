// Package automation defines the interface boundary to the browser backend
// that renders and interacts with target directory pages. The engine never
// drives a browser directly; it talks to whatever Session implementation is
// wired in (the remote sidecar client in production, a scripted fake in
// tests).
package automation

import (
	"context"
	"errors"
)

// ErrBackendUnavailable signals that the browser backend cannot be reached.
var ErrBackendUnavailable = errors.New("automation backend unavailable")

// Option is one choice of an enumerated (select-style) form control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Element is a snapshot of one DOM node matched by a selector query. Ref is
// the backend's opaque handle; interaction calls pass it back.
type Element struct {
	Ref     string            `json:"ref"`
	Tag     string            `json:"tag"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Visible bool              `json:"visible"`
	Enabled bool              `json:"enabled"`
	Options []Option          `json:"options,omitempty"`
}

// Attr returns the named attribute or the empty string.
func (e Element) Attr(name string) string {
	return e.Attrs[name]
}

// Page exposes the interactions the submission executor needs over one
// loaded directory page.
type Page interface {
	// QuerySelectorAll returns all elements matching the CSS selector.
	QuerySelectorAll(ctx context.Context, selector string) ([]Element, error)

	// Fill sets the value of an input or textarea element.
	Fill(ctx context.Context, el Element, value string) error

	// SelectOption picks the option with the given value on a select element.
	SelectOption(ctx context.Context, el Element, value string) error

	// Click activates the element.
	Click(ctx context.Context, el Element) error

	// IsVisible and IsEnabled report interactability from the element
	// snapshot taken at query time.
	IsVisible(el Element) bool
	IsEnabled(el Element) bool

	// Content returns the serialized page markup, used for CAPTCHA
	// signature scans.
	Content(ctx context.Context) (string, error)

	// Close releases the backend page.
	Close(ctx context.Context) error
}

// Session opens pages against the automation backend.
type Session interface {
	OpenPage(ctx context.Context, url string) (Page, error)
}
