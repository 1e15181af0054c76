package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/xenixjr/webrisk-demo-repo/internal/service/webrisk"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeUpstreamError maps a Web Risk client failure onto the relay's error
// envelope: an upstream rejection becomes 502 with the upstream document
// attached, an unreadable upstream reply becomes 502, and anything else is
// treated as a gateway failure and becomes 504. Transport errors already
// carry redacted URLs.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *webrisk.APIError
	switch {
	case errors.As(err, &apiErr):
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   fmt.Sprintf("Web Risk API request failed: %d", apiErr.StatusCode),
			"details": apiErr.Body,
		})
	case errors.Is(err, webrisk.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "Web Risk API returned an unreadable response")
	default:
		writeError(w, http.StatusGatewayTimeout, fmt.Sprintf("Could not connect to Web Risk API: %v", err))
	}
}
