package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dirsubmit/internal/automation"
	"dirsubmit/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("NewClient accepted an empty base url")
	}
}

func TestOpenPageAndQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/pages":
			var req struct {
				URL string `json:"url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL != "https://target.test/submit" {
				t.Errorf("open payload wrong: %+v err=%v", req, err)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"page_id": "p-1"})
		case "/v1/pages/p-1/query":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"elements": []automation.Element{{Ref: "e-1", Tag: "input", Visible: true, Enabled: true}},
			})
		case "/v1/pages/p-1/close":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	page, err := client.OpenPage(context.Background(), "https://target.test/submit")
	if err != nil {
		t.Fatalf("OpenPage returned error: %v", err)
	}
	elements, err := page.QuerySelectorAll(context.Background(), "input[name='email']")
	if err != nil {
		t.Fatalf("QuerySelectorAll returned error: %v", err)
	}
	if len(elements) != 1 || elements[0].Ref != "e-1" {
		t.Fatalf("elements = %+v", elements)
	}
	if !page.IsVisible(elements[0]) || !page.IsEnabled(elements[0]) {
		t.Fatal("element state not carried through")
	}
	if err := page.Close(context.Background()); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestServerErrorMapsToBackendUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := client.OpenPage(context.Background(), "https://x.test"); !errors.Is(err, automation.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestClientErrorMapsToAutomation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such element", http.StatusUnprocessableEntity)
	})
	if _, err := client.OpenPage(context.Background(), "https://x.test"); !errors.Is(err, domain.ErrAutomation) {
		t.Fatalf("error = %v, want ErrAutomation", err)
	}
}

func TestOpenPageRejectsMissingPageID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	})
	if _, err := client.OpenPage(context.Background(), "https://x.test"); !errors.Is(err, automation.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestUnreachableBackend(t *testing.T) {
	client, err := NewClient(Options{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := client.OpenPage(context.Background(), "https://x.test"); !errors.Is(err, automation.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}
