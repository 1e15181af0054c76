package ctlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Entry is a single record from a get-entries page. The sources this tool
// sweeps serve the certificate payload base64-encoded under
// leaf_input.leaf_certificate.
type Entry struct {
	LeafInput LeafInput `json:"leaf_input"`
}

// LeafInput wraps an entry's encoded leaf certificate blob.
type LeafInput struct {
	LeafCertificate string `json:"leaf_certificate"`
}

// STH represents a Signed Tree Head response (RFC 6962 §4.3).
type STH struct {
	TreeSize  int64 `json:"tree_size"`
	Timestamp int64 `json:"timestamp"`
}

// Client queries log sources over HTTP. One client serves any number of
// sources; each call names the source's get-entries endpoint.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetEntries retrieves entries in range [start, end] inclusive from the given
// get-entries endpoint.
func (c *Client) GetEntries(ctx context.Context, source string, start, end int64) ([]Entry, error) {
	url := fmt.Sprintf("%s?start=%d&end=%d", source, start, end)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create entries request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get-entries returned status %d", resp.StatusCode)
	}

	var result struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return result.Entries, nil
}

// GetSTH retrieves the latest Signed Tree Head for the log behind a
// get-entries endpoint. The sibling get-sth endpoint is derived from the
// source URL, so the source must end in /get-entries.
func (c *Client) GetSTH(ctx context.Context, source string) (*STH, error) {
	base, ok := strings.CutSuffix(source, "/get-entries")
	if !ok {
		return nil, fmt.Errorf("cannot derive get-sth endpoint from %q", source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/get-sth", nil)
	if err != nil {
		return nil, fmt.Errorf("create STH request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch STH: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get-sth returned status %d", resp.StatusCode)
	}

	var sth STH
	if err := json.NewDecoder(resp.Body).Decode(&sth); err != nil {
		return nil, fmt.Errorf("decode STH: %w", err)
	}
	return &sth, nil
}
