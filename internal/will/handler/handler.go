// Package handler exposes the will generation pipeline over HTTP.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"willgen/internal/will/payload"
	"willgen/internal/will/service"
	"willgen/internal/will/store/submission"
	"willgen/internal/will/validation"
	dErrors "willgen/pkg/domain-errors"
	"willgen/pkg/platform/httputil"
	"willgen/pkg/requestcontext"
)

// Service defines the pipeline operations the handler needs.
type Service interface {
	Validate(ctx context.Context, raw payload.Raw) (*payload.Normalized, *validation.Result)
	Generate(ctx context.Context, raw payload.Raw) (*service.Generation, error)
	Regenerate(ctx context.Context, parentID string) (*service.Generation, error)
	Verify(ctx context.Context, id string) (*service.VerifyResult, error)
	Explain(ctx context.Context, raw payload.Raw) (*service.Explanation, *validation.Result, error)
	Download(ctx context.Context, id, kind string) ([]byte, string, error)
	Get(ctx context.Context, id string) (*submission.Submission, error)
}

// Middleware is a standard net/http middleware.
type Middleware = func(http.Handler) http.Handler

// Handler wires will endpoints to the pipeline service.
type Handler struct {
	service Service
	logger  *slog.Logger

	generateLimit Middleware
	validateLimit Middleware
	standardLimit Middleware
}

type Option func(*Handler)

// WithRateLimits applies per-endpoint rate limiting. Generation is the
// expensive path and gets the tightest budget; validation is cheap but
// loopable; everything else shares the standard budget. Nil middlewares
// leave the endpoint unlimited.
func WithRateLimits(generate, validate, standard Middleware) Option {
	return func(h *Handler) {
		h.generateLimit = generate
		h.validateLimit = validate
		h.standardLimit = standard
	}
}

// New constructs a will handler.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the will endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	withLimit(r, h.validateLimit).Post("/api/validate", h.handleValidate)
	withLimit(r, h.validateLimit).Post("/api/explain", h.handleExplain)
	withLimit(r, h.generateLimit).Post("/api/generate", h.handleGenerate)
	withLimit(r, h.generateLimit).Post("/api/regenerate/{id}", h.handleRegenerate)

	std := withLimit(r, h.standardLimit)
	std.Get("/api/status/{id}", h.handleStatus)
	std.Get("/api/verify/{id}", h.handleVerify)
	std.Get("/api/download/{id}", h.handleDownloadWill)
	std.Get("/api/download/{id}/checklist", h.handleDownloadChecklist)
}

func withLimit(r chi.Router, mw Middleware) chi.Router {
	if mw == nil {
		return r
	}
	return r.With(mw)
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var raw payload.Raw
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		httputil.WriteError(w, err)
		return
	}

	_, result := h.service.Validate(r.Context(), raw)
	httputil.WriteJSON(w, http.StatusOK, validationResponse(result))
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var raw payload.Raw
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		httputil.WriteError(w, err)
		return
	}

	gen, err := h.service.Generate(ctx, raw)
	if err != nil {
		// Validation failures carry the full result so the form can
		// highlight each field.
		if gen != nil && gen.Validation != nil && !gen.Validation.OK() {
			httputil.WriteJSON(w, http.StatusBadRequest, validationResponse(gen.Validation))
			return
		}
		h.logger.ErrorContext(ctx, "generation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "will generated",
		"request_id", requestcontext.RequestID(ctx),
		"submission_id", gen.Submission.ID,
		"pages", gen.PDF.PageCount)
	httputil.WriteJSON(w, http.StatusCreated, generationResponse(gen))
}

func (h *Handler) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	gen, err := h.service.Regenerate(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "will regenerated",
		"request_id", requestcontext.RequestID(ctx),
		"parent_submission_id", id,
		"submission_id", gen.Submission.ID)
	httputil.WriteJSON(w, http.StatusCreated, generationResponse(gen))
}

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	var raw payload.Raw
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		httputil.WriteError(w, err)
		return
	}

	explanation, result, err := h.service.Explain(r.Context(), raw)
	if err != nil {
		if result != nil && !result.OK() {
			httputil.WriteJSON(w, http.StatusBadRequest, validationResponse(result))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, explanation)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse(sub))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Verify(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDownloadWill(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, service.DocumentWill)
}

func (h *Handler) handleDownloadChecklist(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, service.DocumentChecklist)
}

func (h *Handler) serveDocument(w http.ResponseWriter, r *http.Request, kind string) {
	id := chi.URLParam(r, "id")
	data, name, err := h.service.Download(r.Context(), id, kind)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(r.Context(), "document download failed",
				"submission_id", id, "document", kind, "error", err)
		}
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
