package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenixjr/webrisk-demo-repo/internal/middleware"
	"github.com/xenixjr/webrisk-demo-repo/internal/model"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/evidence"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/urlnorm"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/webrisk"
)

type submitter interface {
	SubmitURI(ctx context.Context, sub webrisk.SubmitRequest) (string, error)
	GetOperation(ctx context.Context, operation string) (*webrisk.Operation, error)
}

type SubmissionHandler struct {
	client submitter
}

func NewSubmissionHandler(client submitter) *SubmissionHandler {
	return &SubmissionHandler{client: client}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/submit", h.Submit)
	r.Get("/submission/*", h.Status)
}

// Submit reports a URL for review and returns a receipt naming the
// operation that tracks the submission.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB

	var req struct {
		URL         string   `json:"url"`
		Evidence    string   `json:"evidence"`
		AbuseType   string   `json:"abuseType"`
		Platform    string   `json:"platform"`
		RegionCodes []string `json:"regionCodes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" || req.Evidence == "" || req.AbuseType == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if err := evidence.Validate(req.Evidence, req.AbuseType); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Platform == "" {
		req.Platform = "PLATFORM_UNSPECIFIED"
	}
	if len(req.RegionCodes) == 0 {
		req.RegionCodes = []string{"US"}
	}

	uri := urlnorm.Normalize(req.URL)
	slog.Debug("submitting url", "url", uri, "abuse_type", req.AbuseType,
		"request_id", middleware.RequestIDFrom(r))

	operation, err := h.client.SubmitURI(r.Context(), webrisk.SubmitRequest{
		URI:         uri,
		AbuseType:   req.AbuseType,
		Evidence:    req.Evidence,
		Platform:    req.Platform,
		RegionCodes: req.RegionCodes,
	})
	if err != nil {
		slog.Error("web risk submission failed", "error", err, "url", uri)
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SubmissionReceipt{
		Operation: operation,
		Status:    "submitted",
		Timestamp: time.Now().UTC().Truncate(time.Second).Format(time.RFC3339),
		Message:   "URL submitted successfully for review",
	})
}

// Status looks up a submission operation. The wildcard segment is the
// operation handle, which may itself contain slashes.
func (h *SubmissionHandler) Status(w http.ResponseWriter, r *http.Request) {
	operation := chi.URLParam(r, "*")
	if operation == "" {
		writeError(w, http.StatusBadRequest, "operation is required")
		return
	}

	op, err := h.client.GetOperation(r.Context(), operation)
	if err != nil {
		slog.Error("operation lookup failed", "error", err, "operation", operation)
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.OperationStatus{
		Operation: op.Name,
		Status:    op.State(),
		Details:   op.Raw,
	})
}
