// Package automationtest provides a scripted in-memory Page and Session for
// exercising the submission pipeline without a browser backend.
package automationtest

import (
	"context"
	"fmt"
	"sync"

	"dirsubmit/internal/automation"
)

// Page is a scripted automation.Page. Selectors map to canned elements;
// interactions are recorded for assertions.
type Page struct {
	mu sync.Mutex

	// Elements maps a CSS selector to the elements it matches.
	Elements map[string][]automation.Element
	// HTML is returned by Content for CAPTCHA signature scans.
	HTML string
	// FailClickRefs lists element refs whose Click call should fail.
	FailClickRefs map[string]bool

	Filled   map[string]string // ref -> last value written
	Selected map[string]string // ref -> chosen option value
	Clicked  []string          // refs in click order
	Closed   bool
}

// NewPage returns an empty scripted page.
func NewPage() *Page {
	return &Page{
		Elements:      map[string][]automation.Element{},
		FailClickRefs: map[string]bool{},
		Filled:        map[string]string{},
		Selected:      map[string]string{},
	}
}

// Add registers an element under the selector.
func (p *Page) Add(selector string, el automation.Element) {
	p.Elements[selector] = append(p.Elements[selector], el)
}

func (p *Page) QuerySelectorAll(_ context.Context, selector string) ([]automation.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Elements[selector], nil
}

func (p *Page) Fill(_ context.Context, el automation.Element, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Filled[el.Ref] = value
	return nil
}

func (p *Page) SelectOption(_ context.Context, el automation.Element, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Selected[el.Ref] = value
	return nil
}

func (p *Page) Click(_ context.Context, el automation.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailClickRefs[el.Ref] {
		return fmt.Errorf("scripted click failure for %s", el.Ref)
	}
	p.Clicked = append(p.Clicked, el.Ref)
	return nil
}

func (p *Page) IsVisible(el automation.Element) bool { return el.Visible }

func (p *Page) IsEnabled(el automation.Element) bool { return el.Enabled }

func (p *Page) Content(context.Context) (string, error) { return p.HTML, nil }

func (p *Page) Close(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Session hands out scripted pages by URL. Unknown URLs fail like an
// unreachable backend.
type Session struct {
	mu    sync.Mutex
	Pages map[string]*Page
	// OpenErrs maps a URL to an error returned instead of a page.
	OpenErrs map[string]error
	Opened   []string
}

// NewSession returns an empty scripted session.
func NewSession() *Session {
	return &Session{Pages: map[string]*Page{}, OpenErrs: map[string]error{}}
}

func (s *Session) OpenPage(_ context.Context, url string) (automation.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opened = append(s.Opened, url)
	if err, ok := s.OpenErrs[url]; ok {
		return nil, err
	}
	page, ok := s.Pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: no page scripted for %s", automation.ErrBackendUnavailable, url)
	}
	return page, nil
}
