package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xenixjr/webrisk-demo-repo/internal/model"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/webrisk"
)

// mockSearcher implements threatSearcher for testing.
type mockSearcher struct {
	searchFn func(ctx context.Context, uri string) (*webrisk.SearchResult, error)
}

func (m *mockSearcher) SearchURI(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
	return m.searchFn(ctx, uri)
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestScan_Safe(t *testing.T) {
	h := NewScanHandler(&mockSearcher{
		searchFn: func(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
			return &webrisk.SearchResult{}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{"url":"https://example.com"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Scores []model.ThreatScore `json:"scores"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(body.Scores))
	}
	for _, s := range body.Scores {
		if s.ConfidenceLevel != "SAFE" {
			t.Errorf("%s = %s, want SAFE", s.ThreatType, s.ConfidenceLevel)
		}
	}
}

func TestScan_ThreatFound(t *testing.T) {
	h := NewScanHandler(&mockSearcher{
		searchFn: func(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
			return &webrisk.SearchResult{
				Threat: &webrisk.ThreatMatch{ThreatTypes: []string{"MALWARE"}},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{"url":"https://bad.example"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Scores []model.ThreatScore `json:"scores"`
	}
	json.NewDecoder(rec.Body).Decode(&body)

	if body.Scores[0].ThreatType != "MALWARE" || body.Scores[0].ConfidenceLevel != "HIGH" {
		t.Errorf("scores[0] = %+v, want MALWARE HIGH", body.Scores[0])
	}
	if body.Scores[1].ConfidenceLevel != "SAFE" {
		t.Errorf("scores[1] = %+v, want SAFE", body.Scores[1])
	}
}

func TestScan_NormalizesURL(t *testing.T) {
	var gotURI string
	h := NewScanHandler(&mockSearcher{
		searchFn: func(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
			gotURI = uri
			return &webrisk.SearchResult{}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{"url":"example.com/"}`))

	if gotURI != "https://example.com" {
		t.Errorf("searched uri = %q, want %q", gotURI, "https://example.com")
	}
}

func TestScan_MissingURL(t *testing.T) {
	h := NewScanHandler(&mockSearcher{})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "URL is required") {
		t.Errorf("body = %q, want URL is required", rec.Body.String())
	}
}

func TestScan_InvalidBody(t *testing.T) {
	h := NewScanHandler(&mockSearcher{})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `not json`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestScan_UpstreamRejection(t *testing.T) {
	h := NewScanHandler(&mockSearcher{
		searchFn: func(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
			return nil, &webrisk.APIError{
				StatusCode: http.StatusForbidden,
				Body:       `{"error":{"message":"API key not valid"}}`,
			}
		},
	})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{"url":"https://example.com"}`))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Error != "Web Risk API request failed: 403" {
		t.Errorf("error = %q", body.Error)
	}
	if !strings.Contains(body.Details, "API key not valid") {
		t.Errorf("details = %q, want upstream document", body.Details)
	}
}

func TestScan_TransportFailure(t *testing.T) {
	h := NewScanHandler(&mockSearcher{
		searchFn: func(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
			return nil, errors.New("call web risk api: connection refused")
		},
	})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{"url":"https://example.com"}`))

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusGatewayTimeout)
	}
	if !strings.Contains(rec.Body.String(), "Could not connect to Web Risk API") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestScan_MalformedUpstream(t *testing.T) {
	h := NewScanHandler(&mockSearcher{
		searchFn: func(ctx context.Context, uri string) (*webrisk.SearchResult, error) {
			return nil, fmt.Errorf("%w: invalid character", webrisk.ErrMalformedResponse)
		},
	})

	rec := httptest.NewRecorder()
	h.Scan(rec, postJSON("/scan", `{"url":"https://example.com"}`))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}
