// Package remote implements automation.Session against the browser-runner
// sidecar's HTTP API. The sidecar owns the actual browser processes; this
// client only shuttles selector queries and interactions over the wire.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/domain"
)

// Options controls how the backend client is configured.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to the browser-runner sidecar. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient validates the options and builds a sidecar client.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("automation backend base url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{baseURL: base, httpClient: httpClient, logger: logger}, nil
}

type openPageRequest struct {
	URL string `json:"url"`
}

type openPageResponse struct {
	PageID string `json:"page_id"`
}

// OpenPage asks the sidecar to navigate a fresh page to the URL.
func (c *Client) OpenPage(ctx context.Context, url string) (automation.Page, error) {
	var resp openPageResponse
	if err := c.post(ctx, "/v1/pages", openPageRequest{URL: url}, &resp); err != nil {
		return nil, err
	}
	if resp.PageID == "" {
		return nil, fmt.Errorf("%w: backend returned no page id", automation.ErrBackendUnavailable)
	}
	return &remotePage{client: c, pageID: resp.PageID}, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", automation.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: backend status %d", automation.ErrBackendUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Msg("automation call rejected")
		return fmt.Errorf("%w: backend status %d: %s", domain.ErrAutomation, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type remotePage struct {
	client *Client
	pageID string
}

type queryRequest struct {
	Selector string `json:"selector"`
}

type queryResponse struct {
	Elements []automation.Element `json:"elements"`
}

type fillRequest struct {
	Ref   string `json:"ref"`
	Value string `json:"value"`
}

type selectRequest struct {
	Ref   string `json:"ref"`
	Value string `json:"value"`
}

type clickRequest struct {
	Ref string `json:"ref"`
}

type contentResponse struct {
	HTML string `json:"html"`
}

func (p *remotePage) path(op string) string {
	return "/v1/pages/" + p.pageID + "/" + op
}

func (p *remotePage) QuerySelectorAll(ctx context.Context, selector string) ([]automation.Element, error) {
	var resp queryResponse
	if err := p.client.post(ctx, p.path("query"), queryRequest{Selector: selector}, &resp); err != nil {
		return nil, err
	}
	return resp.Elements, nil
}

func (p *remotePage) Fill(ctx context.Context, el automation.Element, value string) error {
	return p.client.post(ctx, p.path("fill"), fillRequest{Ref: el.Ref, Value: value}, nil)
}

func (p *remotePage) SelectOption(ctx context.Context, el automation.Element, value string) error {
	return p.client.post(ctx, p.path("select"), selectRequest{Ref: el.Ref, Value: value}, nil)
}

func (p *remotePage) Click(ctx context.Context, el automation.Element) error {
	return p.client.post(ctx, p.path("click"), clickRequest{Ref: el.Ref}, nil)
}

func (p *remotePage) IsVisible(el automation.Element) bool { return el.Visible }

func (p *remotePage) IsEnabled(el automation.Element) bool { return el.Enabled }

func (p *remotePage) Content(ctx context.Context) (string, error) {
	var resp contentResponse
	if err := p.client.post(ctx, p.path("content"), struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.HTML, nil
}

func (p *remotePage) Close(ctx context.Context) error {
	return p.client.post(ctx, p.path("close"), struct{}{}, nil)
}
