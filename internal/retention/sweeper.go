// Package retention removes generated documents once they age past the
// retention period. Submission records and the audit trail are never
// deleted; only the PDF artifacts on disk expire.
package retention

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"willgen/internal/audit"
	"willgen/internal/will/store/submission"
)

// Sweeper runs the retention policy on an interval.
type Sweeper struct {
	store     submission.Store
	trail     *audit.Trail
	logger    *slog.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func New(store submission.Store, trail *audit.Trail, retention, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:     store,
		trail:     trail,
		logger:    slog.Default(),
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once immediately, then on every interval tick until the context
// is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("retention sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep removes expired documents and clears their stored paths, returning
// the number of submissions whose documents were removed. Per-file failures
// do not abort the sweep; they are collected into the audit record.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	expired, err := s.store.ListExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention: list expired: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	deleted := 0
	var sweepErrs []string
	for i := range expired {
		sub := &expired[i]
		failed := false
		for _, path := range []string{sub.PDFPath, sub.ChecklistPath} {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				sweepErrs = append(sweepErrs, fmt.Sprintf("%s: %v", sub.ID, err))
				failed = true
			}
		}
		if failed {
			continue
		}
		if err := s.store.ClearDocuments(ctx, sub.ID); err != nil {
			sweepErrs = append(sweepErrs, fmt.Sprintf("%s: clear documents: %v", sub.ID, err))
			continue
		}
		deleted++
		s.logger.Info("expired documents removed",
			"submission_id", sub.ID,
			"created_at", sub.CreatedAt,
		)
	}

	s.trail.RetentionExecuted(ctx, deleted, sweepErrs)
	return deleted, nil
}
