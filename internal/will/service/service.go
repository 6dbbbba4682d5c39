// Package service orchestrates the will generation pipeline: validation,
// context building, clause resolution, rendering, and deterministic PDF
// assembly, with the submission record as the unit of work.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"willgen/internal/audit"
	"willgen/internal/checklist"
	"willgen/internal/will/clause"
	"willgen/internal/will/metrics"
	"willgen/internal/will/payload"
	"willgen/internal/will/pdf"
	"willgen/internal/will/render"
	"willgen/internal/will/store/submission"
	"willgen/internal/will/validation"
	"willgen/internal/will/willcontext"
	dErrors "willgen/pkg/domain-errors"
	"willgen/pkg/platform/sentinel"
	"willgen/pkg/requestcontext"
)

// Mailer delivers generated documents to the will maker. Delivery is
// best-effort and never fails a generation.
type Mailer interface {
	SendWill(ctx context.Context, recipient string, sub *submission.Submission, pdfBytes, checklistBytes []byte) error
}

// Service runs the generation pipeline over a submission store.
type Service struct {
	store     submission.Store
	trail     *audit.Trail
	validator *validation.Validator
	metrics   *metrics.Metrics
	mailer    Mailer
	logger    *slog.Logger
	tracer    trace.Tracer
	pdfDir    string
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides submission ID generation, for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New constructs a Service. Generated documents are written under pdfDir.
func New(store submission.Store, trail *audit.Trail, pdfDir string, opts ...Option) *Service {
	s := &Service{
		store:     store,
		trail:     trail,
		validator: validation.New(),
		logger:    slog.Default(),
		tracer:    otel.Tracer("willgen/will"),
		pdfDir:    pdfDir,
		now:       time.Now,
		newID:     newSubmissionID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newSubmissionID() string {
	return "sub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Validate sanitizes and validates a raw payload without persisting anything.
func (s *Service) Validate(ctx context.Context, raw payload.Raw) (*payload.Normalized, *validation.Result) {
	_, span := s.tracer.Start(ctx, "will.validate")
	defer span.End()
	start := s.now()

	sanitized, _ := validation.SanitizePayload(raw).(payload.Raw)
	normalized, result := s.validator.Validate(sanitized)

	s.metrics.ObserveStageLatency("validate", s.now().Sub(start))
	for _, e := range result.Errors {
		s.metrics.IncrementValidationError(e.Section)
	}
	span.SetAttributes(
		attribute.Int("validation.errors", len(result.Errors)),
		attribute.Int("validation.warnings", len(result.Warnings)),
	)
	return normalized, result
}

// Generation is the outcome of a generate or regenerate call.
type Generation struct {
	Submission *submission.Submission
	PDF        *pdf.Document
	Checklist  *checklist.Document
	Validation *validation.Result
}

// Generate runs the full pipeline for a new submission. When validation
// fails, the returned Generation carries the result and no submission is
// persisted.
func (s *Service) Generate(ctx context.Context, raw payload.Raw) (*Generation, error) {
	ctx, span := s.tracer.Start(ctx, "will.generate")
	defer span.End()
	start := s.now()

	normalized, result := s.Validate(ctx, raw)
	id := s.newID()
	if !result.OK() {
		s.trail.ValidationResult(ctx, id, false, len(result.Errors))
		s.metrics.IncrementOutcome("validation_failed")
		return &Generation{Validation: result},
			dErrors.New(dErrors.CodeBadRequest, "payload failed validation")
	}

	payloadJSON, err := json.Marshal(normalized)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize payload")
	}

	now := s.now()
	sub := &submission.Submission{
		ID:                  id,
		GenerationTimestamp: now,
		CreatedAt:           now,
		IPAddress:           requestcontext.ClientIP(ctx),
		UserAgent:           requestcontext.UserAgent(ctx),
		Payload:             payloadJSON,
		Status:              submission.StatusGenerating,
		Version:             1,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
	}
	s.trail.SubmissionCreated(ctx, id)
	s.trail.ValidationResult(ctx, id, true, 0)

	gen, err := s.runPipeline(ctx, sub, normalized, false)
	if err != nil {
		return nil, err
	}
	gen.Validation = result
	s.metrics.ObserveGenerateLatency(s.now().Sub(start))
	return gen, nil
}

// Regenerate forks a locked submission into a new version and runs the
// pipeline over the stored payload with a fresh generation timestamp.
func (s *Service) Regenerate(ctx context.Context, parentID string) (*Generation, error) {
	ctx, span := s.tracer.Start(ctx, "will.regenerate",
		trace.WithAttributes(attribute.String("parent_submission_id", parentID)))
	defer span.End()

	parent, err := s.store.Get(ctx, parentID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	if !parent.CanRegenerate() {
		return nil, dErrors.New(dErrors.CodeConflict, "submission has no generated document to regenerate")
	}

	child, err := parent.Duplicate(s.newID(), s.now())
	if errors.Is(err, sentinel.ErrInvalidState) {
		return nil, dErrors.New(dErrors.CodeConflict, "submission is still being generated")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fork submission")
	}

	var normalized payload.Normalized
	if err := json.Unmarshal(parent.Payload, &normalized); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored payload is unreadable")
	}

	child.Status = submission.StatusGenerating
	if err := s.store.Create(ctx, child); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create submission")
	}
	s.trail.SubmissionDuplicated(ctx, parentID, child.ID)

	return s.runPipeline(ctx, child, &normalized, true)
}

// runPipeline executes context building through locking for a persisted
// submission whose payload already validated.
func (s *Service) runPipeline(ctx context.Context, sub *submission.Submission, normalized *payload.Normalized, regeneration bool) (*Generation, error) {
	ctx, span := s.tracer.Start(ctx, "will.pipeline",
		trace.WithAttributes(attribute.String("submission_id", sub.ID)))
	defer span.End()

	c, err := s.buildContext(normalized)
	if err != nil {
		return nil, s.fail(ctx, sub, "context", err)
	}

	start := s.now()
	plan, err := clause.Resolve(c)
	s.metrics.ObserveStageLatency("resolve", s.now().Sub(start))
	if err != nil {
		return nil, s.fail(ctx, sub, "resolve", err)
	}

	start = s.now()
	clauses, err := render.Render(plan, c)
	s.metrics.ObserveStageLatency("render", s.now().Sub(start))
	if err != nil {
		return nil, s.fail(ctx, sub, "render", err)
	}

	start = s.now()
	doc, err := pdf.Assemble(clauses, sub.GenerationTimestamp)
	s.metrics.ObserveStageLatency("assemble", s.now().Sub(start))
	if err != nil {
		return nil, s.fail(ctx, sub, "assemble", err)
	}

	start = s.now()
	cl, err := checklist.Generate(c, doc.IntegrityHash, sub.GenerationTimestamp)
	s.metrics.ObserveStageLatency("checklist", s.now().Sub(start))
	if err != nil {
		return nil, s.fail(ctx, sub, "checklist", err)
	}

	pdfPath := filepath.Join(s.pdfDir, sub.ID+".pdf")
	checklistPath := filepath.Join(s.pdfDir, sub.ID+"_checklist.pdf")
	if err := os.WriteFile(pdfPath, doc.Bytes, 0o600); err != nil {
		return nil, s.fail(ctx, sub, "store", err)
	}
	if err := os.WriteFile(checklistPath, cl.Bytes, 0o600); err != nil {
		return nil, s.fail(ctx, sub, "store", err)
	}

	sub.PDFPath = pdfPath
	sub.PDFSHA256 = doc.IntegrityHash
	sub.ChecklistPath = checklistPath
	sub.ChecklistSHA256 = cl.Hash
	sub.Status = submission.StatusCompleted
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, s.fail(ctx, sub, "store", err)
	}
	s.trail.PDFGenerated(ctx, sub.ID, doc.IntegrityHash, regeneration)
	s.trail.ChecklistGenerated(ctx, sub.ID, cl.Hash)

	s.sendEmail(ctx, sub, normalized, doc.Bytes, cl.Bytes)

	sub.Lock("generation complete", s.now())
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, s.fail(ctx, sub, "lock", err)
	}
	s.trail.SubmissionLocked(ctx, sub.ID, "generation complete")

	s.metrics.IncrementOutcome("completed")
	s.metrics.ObserveDocumentPages(doc.PageCount)
	s.logger.Info("will generated",
		"submission_id", sub.ID,
		"pages", doc.PageCount,
		"hash", doc.IntegrityHash,
		"regeneration", regeneration)

	return &Generation{Submission: sub, PDF: doc, Checklist: cl}, nil
}

func (s *Service) buildContext(normalized *payload.Normalized) (c *willcontext.Context, err error) {
	start := s.now()
	defer func() { s.metrics.ObserveStageLatency("context", s.now().Sub(start)) }()
	return willcontext.Build(normalized), nil
}

// fail marks the submission errored, audits, and returns a transport error.
// The status update is best-effort: the original failure is what matters.
func (s *Service) fail(ctx context.Context, sub *submission.Submission, stage string, cause error) error {
	sub.Status = submission.StatusError
	sub.ErrorMessage = cause.Error()
	if err := s.store.Update(ctx, sub); err != nil {
		s.logger.Error("failed to record submission error", "submission_id", sub.ID, "error", err)
	}
	s.trail.GenerationFailed(ctx, sub.ID, stage, cause)
	s.metrics.IncrementOutcome("error")
	s.logger.Error("generation failed", "submission_id", sub.ID, "stage", stage, "error", cause)
	return dErrors.Wrap(cause, dErrors.CodeInternal, "document generation failed")
}

func (s *Service) sendEmail(ctx context.Context, sub *submission.Submission, normalized *payload.Normalized, pdfBytes, checklistBytes []byte) {
	if s.mailer == nil || normalized.WillMaker.Email == "" {
		return
	}
	recipient := normalized.WillMaker.Email
	err := s.mailer.SendWill(ctx, recipient, sub, pdfBytes, checklistBytes)
	sentAt := s.now()
	sub.EmailSent = err == nil
	sub.EmailSentAt = &sentAt
	sub.EmailRecipient = recipient
	if err != nil {
		sub.EmailSent = false
		sub.EmailSentAt = nil
		sub.EmailError = err.Error()
	}
	s.trail.EmailResult(ctx, sub.ID, recipient, err)
	if err != nil {
		s.logger.Error("email delivery failed", "submission_id", sub.ID, "error", err)
	}
}
