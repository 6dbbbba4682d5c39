package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"

	platformmw "willgen/internal/platform/middleware"
	dErrors "willgen/pkg/domain-errors"
	"willgen/pkg/platform/httputil"
)

// Middleware throttles requests per client IP. Store failures fail open:
// losing Redis must not take the intake down with it.
func Middleware(store Store, limit Limit, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := platformmw.ClientIPFromRequest(r)
			result, err := store.Allow(r.Context(), key, limit.Requests, limit.Window)
			if err != nil {
				logger.Error("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

			if !result.Allowed {
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
