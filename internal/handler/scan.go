package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xenixjr/webrisk-demo-repo/internal/middleware"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/urlnorm"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/webrisk"
)

type threatSearcher interface {
	SearchURI(ctx context.Context, uri string) (*webrisk.SearchResult, error)
}

type ScanHandler struct {
	client threatSearcher
}

func NewScanHandler(client threatSearcher) *ScanHandler {
	return &ScanHandler{client: client}
}

func (h *ScanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/scan", h.Scan)
}

// Scan checks one URL against the Web Risk lists and reports a confidence
// level per threat category.
func (h *ScanHandler) Scan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	uri := urlnorm.Normalize(req.URL)
	slog.Debug("scanning url", "url", uri, "request_id", middleware.RequestIDFrom(r))

	result, err := h.client.SearchURI(r.Context(), uri)
	if err != nil {
		slog.Error("web risk search failed", "error", err, "url", uri)
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"scores": result.Scores()})
}
