// Package webrisk is a thin client for the Google Web Risk REST API:
// uris:search for reputation lookups, uris:submit and operations get for
// the abuse-submission flow.
package webrisk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/xenixjr/webrisk-demo-repo/internal/model"
)

// DefaultThreatTypes are the categories every lookup is checked against.
// Score responses list them in this order.
var DefaultThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}

const (
	ConfidenceHigh = "HIGH"
	ConfidenceSafe = "SAFE"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ErrMalformedResponse marks an upstream reply whose body could not be
// interpreted: invalid JSON or a document missing the fields the flow needs.
var ErrMalformedResponse = errors.New("malformed web risk response")

// APIError is a non-2xx reply from the Web Risk API. Body carries the
// upstream error document verbatim for the caller's error envelope.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("web risk api returned status %d", e.StatusCode)
}

// SearchResult is the uris:search response. Threat is nil when the URI is
// not on any list.
type SearchResult struct {
	Threat *ThreatMatch `json:"threat"`
}

// ThreatMatch names the lists a searched URI appears on.
type ThreatMatch struct {
	ThreatTypes []string `json:"threatTypes"`
	ExpireTime  string   `json:"expireTime"`
}

// Scores maps the verdict onto the fixed threat categories: HIGH for each
// category the verdict names, SAFE for the rest.
func (r *SearchResult) Scores() []model.ThreatScore {
	var found []string
	if r != nil && r.Threat != nil {
		found = r.Threat.ThreatTypes
	}

	scores := make([]model.ThreatScore, 0, len(DefaultThreatTypes))
	for _, t := range DefaultThreatTypes {
		level := ConfidenceSafe
		if slices.Contains(found, t) {
			level = ConfidenceHigh
		}
		scores = append(scores, model.ThreatScore{ThreatType: t, ConfidenceLevel: level})
	}
	return scores
}

// SubmitRequest is one abuse submission.
type SubmitRequest struct {
	URI         string
	AbuseType   string
	Evidence    string
	Platform    string
	RegionCodes []string
}

// Operation is a Web Risk long-running operation document. Raw holds the
// upstream document verbatim.
type Operation struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Metadata map[string]any  `json:"metadata"`
	Raw      json.RawMessage `json:"-"`
}

// State derives the submission status: PENDING until the operation is done,
// then the metadata state when the API reports one, SUCCEEDED otherwise.
func (o *Operation) State() string {
	if !o.Done {
		return "PENDING"
	}
	if s, ok := o.Metadata["state"].(string); ok {
		return s
	}
	return "SUCCEEDED"
}

// Client calls the Web Risk API. Searches authenticate with the API key;
// submissions and operation lookups use Application Default Credentials.
type Client struct {
	baseURL    string
	apiKey     string
	project    string
	httpClient *http.Client

	mu            sync.Mutex
	authClient    *http.Client
	newAuthClient func(ctx context.Context) (*http.Client, error)
}

// NewClient builds a client against baseURL (no trailing slash needed) for
// the given API key and project number.
func NewClient(baseURL, apiKey, project string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		project: project,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		newAuthClient: defaultAuthClient,
	}
}

func defaultAuthClient(ctx context.Context) (*http.Client, error) {
	hc, err := google.DefaultClient(ctx, cloudPlatformScope)
	if err != nil {
		return nil, err
	}
	hc.Timeout = 15 * time.Second
	return hc, nil
}

// authHTTPClient returns the ADC-authorized client, building it on first
// use. Token refreshes outlive any single request, so the credential lookup
// is not tied to the caller's context. A failed lookup is retried on the
// next call.
func (c *Client) authHTTPClient() (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authClient != nil {
		return c.authClient, nil
	}
	hc, err := c.newAuthClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("obtain credentials: %w", err)
	}
	c.authClient = hc
	return hc, nil
}

// SearchURI checks one URI against the default threat categories. An empty
// upstream body means the URI is not listed.
func (c *Client) SearchURI(ctx context.Context, uri string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("uri", uri)
	for _, t := range DefaultThreatTypes {
		params.Add("threatTypes", t)
	}
	searchURL := c.baseURL + "/v1/uris:search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	slog.Debug("calling web risk search", "url", redactKey(searchURL))

	body, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{}
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return result, nil
}

// SubmitURI reports a URI for review and returns the name of the operation
// tracking the submission.
func (c *Client) SubmitURI(ctx context.Context, sub SubmitRequest) (string, error) {
	hc, err := c.authHTTPClient()
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(submissionBody{
		Submission: submissionURI{URI: sub.URI},
		ThreatInfo: threatInfo{
			AbuseType:        sub.AbuseType,
			ThreatConfidence: threatConfidence{Level: ConfidenceHigh},
			ThreatJustification: threatJustification{
				Labels:   []string{"MANUAL_VERIFICATION"},
				Comments: []string{sub.Evidence},
			},
		},
		ThreatDiscovery: threatDiscovery{
			Platform:    sub.Platform,
			RegionCodes: sub.RegionCodes,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}

	submitURL := fmt.Sprintf("%s/v1/projects/%s/uris:submit", c.baseURL, c.project)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	slog.Debug("calling web risk submit", "url", submitURL, "abuse_type", sub.AbuseType)

	body, err := c.do(hc, req)
	if err != nil {
		return "", err
	}

	var result struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.Name == "" {
		return "", fmt.Errorf("%w: submission response has no operation name", ErrMalformedResponse)
	}
	return result.Name, nil
}

// GetOperation fetches a submission operation by its handle, which may
// contain path separators.
func (c *Client) GetOperation(ctx context.Context, operation string) (*Operation, error) {
	hc, err := c.authHTTPClient()
	if err != nil {
		return nil, err
	}

	opURL := fmt.Sprintf("%s/v1/projects/%s/operations/%s", c.baseURL, c.project, operation)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create operation request: %w", err)
	}

	slog.Debug("calling web risk operations get", "url", opURL)

	body, err := c.do(hc, req)
	if err != nil {
		return nil, err
	}

	var op Operation
	if err := json.Unmarshal(body, &op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	op.Raw = body
	return &op, nil
}

func (c *Client) do(hc *http.Client, req *http.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, sanitizeURLError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read web risk response: %w", err)
	}

	slog.Debug("web risk response", "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

var keyParam = regexp.MustCompile(`([?&]key=)[^&\s"]+`)

// redactKey masks the key query parameter in a URL or error string so the
// API key never reaches logs or response bodies.
func redactKey(s string) string {
	return keyParam.ReplaceAllString(s, "${1}REDACTED")
}

// sanitizeURLError redacts the request URL a transport error carries before
// the error can surface in a log line or an error envelope.
func sanitizeURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = redactKey(uerr.URL)
	}
	return fmt.Errorf("call web risk api: %w", err)
}

type submissionBody struct {
	Submission      submissionURI   `json:"submission"`
	ThreatInfo      threatInfo      `json:"threatInfo"`
	ThreatDiscovery threatDiscovery `json:"threatDiscovery"`
}

type submissionURI struct {
	URI string `json:"uri"`
}

type threatInfo struct {
	AbuseType           string              `json:"abuseType"`
	ThreatConfidence    threatConfidence    `json:"threatConfidence"`
	ThreatJustification threatJustification `json:"threatJustification"`
}

type threatConfidence struct {
	Level string `json:"level"`
}

type threatJustification struct {
	Labels   []string `json:"labels"`
	Comments []string `json:"comments"`
}

type threatDiscovery struct {
	Platform    string   `json:"platform"`
	RegionCodes []string `json:"regionCodes"`
}
