package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"willgen/internal/explain"
	"willgen/internal/will/clause"
	"willgen/internal/will/payload"
	"willgen/internal/will/pdf"
	"willgen/internal/will/render"
	"willgen/internal/will/store/submission"
	"willgen/internal/will/validation"
	"willgen/internal/will/willcontext"
	dErrors "willgen/pkg/domain-errors"
	"willgen/pkg/platform/sentinel"
)

// Get loads one submission.
func (s *Service) Get(ctx context.Context, id string) (*submission.Submission, error) {
	sub, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	return sub, nil
}

// List returns a page of submissions, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]submission.Submission, error) {
	subs, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list submissions")
	}
	return subs, nil
}

// Stats returns submission counts by status.
func (s *Service) Stats(ctx context.Context) (map[submission.Status]int, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count submissions")
	}
	return counts, nil
}

// Document kinds served by Download.
const (
	DocumentWill      = "will"
	DocumentChecklist = "checklist"
)

// Download reads a generated document from disk, verifying its stored hash
// before serving. A hash mismatch means the file was altered after
// generation and must never reach the user.
func (s *Service) Download(ctx context.Context, id, kind string) ([]byte, string, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var path, hash string
	switch kind {
	case DocumentWill:
		path, hash = sub.PDFPath, sub.PDFSHA256
	case DocumentChecklist:
		path, hash = sub.ChecklistPath, sub.ChecklistSHA256
	default:
		return nil, "", dErrors.New(dErrors.CodeBadRequest, "unknown document type")
	}
	if path == "" {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "document not available")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document")
	}
	if !pdf.VerifyIntegrity(data, hash) {
		s.logger.Error("stored document failed integrity verification",
			"submission_id", id, "document", kind)
		return nil, "", dErrors.New(dErrors.CodeInternal, "document failed integrity verification")
	}
	return data, filepath.Base(path), nil
}

// VerifyResult reports whether a stored document can be reproduced from its
// payload and generation timestamp.
type VerifyResult struct {
	SubmissionID string `json:"submission_id"`
	Verified     bool   `json:"verified"`
	StoredHash   string `json:"stored_hash"`
	ComputedHash string `json:"computed_hash"`
	PageCount    int    `json:"page_count"`
}

// Verify re-runs the pipeline from the stored payload with the original
// generation timestamp and compares the resulting integrity hash against
// the one recorded at generation time.
func (s *Service) Verify(ctx context.Context, id string) (*VerifyResult, error) {
	_, span := s.tracer.Start(ctx, "will.verify")
	defer span.End()

	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.PDFSHA256 == "" {
		return nil, dErrors.New(dErrors.CodeConflict, "submission has no generated document to verify")
	}

	var normalized payload.Normalized
	if err := json.Unmarshal(sub.Payload, &normalized); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored payload is unreadable")
	}

	c := willcontext.Build(&normalized)
	plan, err := clause.Resolve(c)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve clauses")
	}
	clauses, err := render.Render(plan, c)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render clauses")
	}
	doc, err := pdf.Assemble(clauses, sub.GenerationTimestamp)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assemble document")
	}

	return &VerifyResult{
		SubmissionID: sub.ID,
		Verified:     doc.IntegrityHash == sub.PDFSHA256,
		StoredHash:   sub.PDFSHA256,
		ComputedHash: doc.IntegrityHash,
		PageCount:    doc.PageCount,
	}, nil
}

// Explanation bundles the plain-language views of a draft payload.
type Explanation struct {
	Summary   *explain.Summary          `json:"summary"`
	Clauses   *explain.ClauseBreakdown  `json:"clauses"`
	Execution *explain.ExecutionSummary `json:"execution"`
}

// Explain validates a draft payload and returns its plain-language summary
// without persisting anything. A failed validation returns the result so
// callers can surface the errors.
func (s *Service) Explain(ctx context.Context, raw payload.Raw) (*Explanation, *validation.Result, error) {
	_, span := s.tracer.Start(ctx, "will.explain")
	defer span.End()

	normalized, result := s.Validate(ctx, raw)
	if !result.OK() {
		return nil, result, dErrors.New(dErrors.CodeBadRequest, "payload failed validation")
	}

	c := willcontext.Build(normalized)
	breakdown, err := explain.ExplainClauses(c)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to explain clauses")
	}
	return &Explanation{
		Summary:   explain.Summarize(c),
		Clauses:   breakdown,
		Execution: explain.Execution(c),
	}, result, nil
}
