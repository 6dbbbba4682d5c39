package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"willgen/internal/audit"
	"willgen/internal/will/store/submission"
	dErrors "willgen/pkg/domain-errors"
	"willgen/pkg/platform/httputil"
	"willgen/pkg/requestcontext"
)

// SubmissionService is the slice of the will service the console needs.
type SubmissionService interface {
	Get(ctx context.Context, id string) (*submission.Submission, error)
	List(ctx context.Context, limit, offset int) ([]submission.Submission, error)
	Stats(ctx context.Context) (map[submission.Status]int, error)
	Download(ctx context.Context, id, kind string) ([]byte, string, error)
}

// Handler wires the admin console endpoints.
type Handler struct {
	auth       *Authenticator
	service    SubmissionService
	auditStore audit.Store
	trail      *audit.Trail
	logger     *slog.Logger
	sessionTTL time.Duration
}

// New constructs an admin handler.
func New(auth *Authenticator, service SubmissionService, auditStore audit.Store, trail *audit.Trail, logger *slog.Logger, sessionTTL time.Duration) *Handler {
	return &Handler{
		auth:       auth,
		service:    service,
		auditStore: auditStore,
		trail:      trail,
		logger:     logger,
		sessionTTL: sessionTTL,
	}
}

// Register mounts the admin endpoints. Everything except login requires a
// valid session token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.RequireAuth)
		r.Post("/admin/logout", h.handleLogout)
		r.Get("/admin/submissions", h.handleListSubmissions)
		r.Get("/admin/submissions/{id}", h.handleGetSubmission)
		r.Get("/admin/submissions/{id}/download", h.handleDownload)
		r.Get("/admin/audit", h.handleListAudit)
		r.Get("/admin/audit/verify", h.handleVerifyAudit)
		r.Get("/admin/stats", h.handleStats)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.trail.AdminLogin(ctx, req.Username, false, "invalid credentials")
		h.logger.WarnContext(ctx, "admin login failed",
			"username", req.Username,
			"ip", requestcontext.ClientIP(ctx))
		httputil.WriteError(w, err)
		return
	}

	h.trail.AdminLogin(ctx, req.Username, true, "")
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(h.sessionTTL.Seconds()),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.trail.AdminLogout(ctx, requestcontext.AdminUser(ctx))
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 50)
	subs, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]submissionSummary, 0, len(subs))
	for i := range subs {
		out = append(out, summarize(&subs[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"submissions": out,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	sub, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.trail.AdminViewed(ctx, id, requestcontext.AdminUser(ctx))
	httputil.WriteJSON(w, http.StatusOK, detail(sub))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	kind := r.URL.Query().Get("document")
	if kind == "" {
		kind = "will"
	}

	data, name, err := h.service.Download(ctx, id, kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.trail.AdminDownloaded(ctx, id, requestcontext.AdminUser(ctx), kind)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		records []audit.Record
		err     error
	)
	if submissionID := r.URL.Query().Get("submission_id"); submissionID != "" {
		records, err = h.auditStore.ListBySubmission(ctx, submissionID)
	} else {
		limit, offset := pagination(r, 100)
		records, err = h.auditStore.List(ctx, limit, offset)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail"))
		return
	}

	h.trail.AdminAuditViewed(ctx, requestcontext.AdminUser(ctx))
	if records == nil {
		records = []audit.Record{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (h *Handler) handleVerifyAudit(w http.ResponseWriter, r *http.Request) {
	report, err := audit.VerifyTrail(r.Context(), h.auditStore)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify audit trail"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	total := 0
	byStatus := make(map[string]int, len(counts))
	for status, n := range counts {
		byStatus[string(status)] = n
		total += n
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"total":     total,
		"by_status": byStatus,
	})
}

func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
