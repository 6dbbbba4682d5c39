package audit

import (
	"context"
	"log/slog"
	"time"

	"willgen/pkg/requestcontext"
)

// Trail is the write-side facade services use. Emission is best-effort: a
// failed append or publish is logged but never fails the operation being
// audited.
type Trail struct {
	store     Store
	publisher *Publisher // nil when Kafka is not configured
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Trail.
type Option func(*Trail)

// WithPublisher attaches a Kafka publisher.
func WithPublisher(p *Publisher) Option {
	return func(t *Trail) { t.publisher = p }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(t *Trail) { t.now = now }
}

// NewTrail builds a Trail over a store.
func NewTrail(store Store, logger *slog.Logger, opts ...Option) *Trail {
	t := &Trail{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trail) emit(ctx context.Context, r Record) {
	r.Timestamp = t.now().UTC()
	if r.IPAddress == "" {
		r.IPAddress = requestcontext.ClientIP(ctx)
	}
	if r.UserAgent == "" {
		r.UserAgent = requestcontext.UserAgent(ctx)
	}
	if r.ActorType == "user" && r.ActorID == "" {
		r.ActorID = r.IPAddress
	}

	record, err := NewRecord(r)
	if err != nil {
		t.logger.Error("audit record rejected", "action", r.Action, "error", err)
		return
	}

	if err := t.store.Append(ctx, record); err != nil {
		t.logger.Error("audit append failed", "action", record.Action, "error", err)
	}
	if t.publisher != nil {
		if err := t.publisher.Publish(ctx, record); err != nil {
			t.logger.Error("audit publish failed", "action", record.Action, "error", err)
		}
	}
}

// SubmissionCreated records intake of a new submission.
func (t *Trail) SubmissionCreated(ctx context.Context, submissionID string) {
	t.emit(ctx, Record{
		Action:       ActionSubmissionCreated,
		Category:     CategoryCreate,
		ActorType:    "user",
		ResourceType: "submission",
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Success:      true,
	})
}

// SubmissionDuplicated records a regeneration fork.
func (t *Trail) SubmissionDuplicated(ctx context.Context, parentID, childID string) {
	t.emit(ctx, Record{
		Action:       ActionSubmissionDuplicated,
		Category:     CategoryCreate,
		ActorType:    "user",
		ResourceType: "submission",
		ResourceID:   childID,
		SubmissionID: childID,
		Details:      map[string]any{"parent_submission_id": parentID},
		Success:      true,
	})
}

// ValidationResult records a validation pass or failure.
func (t *Trail) ValidationResult(ctx context.Context, submissionID string, passed bool, errorCount int) {
	action := ActionValidationPassed
	var details map[string]any
	if !passed {
		action = ActionValidationFailed
		details = map[string]any{"error_count": errorCount}
	}
	t.emit(ctx, Record{
		Action:       action,
		Category:     CategorySystem,
		ActorType:    "system",
		ResourceType: "submission",
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Details:      details,
		Success:      passed,
	})
}

// PDFGenerated records document assembly, distinguishing regenerations.
func (t *Trail) PDFGenerated(ctx context.Context, submissionID, pdfHash string, regeneration bool) {
	action := ActionPDFGenerated
	if regeneration {
		action = ActionRegenerationStarted
	}
	resourceID := pdfHash
	if len(resourceID) > 16 {
		resourceID = resourceID[:16]
	}
	t.emit(ctx, Record{
		Action:       action,
		Category:     CategoryGenerate,
		ActorType:    "system",
		ResourceType: "pdf",
		ResourceID:   resourceID,
		SubmissionID: submissionID,
		Details:      map[string]any{"pdf_hash": pdfHash, "is_regeneration": regeneration},
		Success:      true,
	})
}

// ChecklistGenerated records execution checklist assembly.
func (t *Trail) ChecklistGenerated(ctx context.Context, submissionID, checklistHash string) {
	t.emit(ctx, Record{
		Action:       ActionChecklistGenerated,
		Category:     CategoryGenerate,
		ActorType:    "system",
		ResourceType: "checklist",
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Details:      map[string]any{"checklist_hash": checklistHash},
		Success:      true,
	})
}

// SubmissionLocked records a submission becoming immutable.
func (t *Trail) SubmissionLocked(ctx context.Context, submissionID, reason string) {
	t.emit(ctx, Record{
		Action:       ActionSubmissionLocked,
		Category:     CategoryUpdate,
		ActorType:    "system",
		ResourceType: "submission",
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Details:      map[string]any{"lock_reason": reason},
		Success:      true,
	})
}

// EmailResult records a delivery attempt.
func (t *Trail) EmailResult(ctx context.Context, submissionID, recipient string, err error) {
	action := ActionEmailSent
	errMsg := ""
	if err != nil {
		action = ActionEmailFailed
		errMsg = err.Error()
	}
	t.emit(ctx, Record{
		Action:       action,
		Category:     CategorySend,
		ActorType:    "system",
		ResourceType: "email",
		ResourceID:   recipient,
		SubmissionID: submissionID,
		Details:      map[string]any{"recipient": recipient},
		Success:      err == nil,
		ErrorMessage: errMsg,
	})
}

// GenerationFailed records a pipeline failure after validation passed.
func (t *Trail) GenerationFailed(ctx context.Context, submissionID, stage string, err error) {
	t.emit(ctx, Record{
		Action:       ActionError,
		Category:     CategoryGenerate,
		ActorType:    "system",
		ResourceType: "submission",
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Details:      map[string]any{"stage": stage},
		Success:      false,
		ErrorMessage: err.Error(),
	})
}

// AdminLogin records an authentication attempt.
func (t *Trail) AdminLogin(ctx context.Context, username string, success bool, reason string) {
	action := ActionAdminLogin
	if !success {
		action = ActionAdminLoginFailed
	}
	t.emit(ctx, Record{
		Action:       action,
		Category:     CategoryAuth,
		ActorType:    "admin",
		ActorID:      username,
		ResourceType: "admin_session",
		ResourceID:   username,
		Success:      success,
		ErrorMessage: reason,
	})
}

// AdminLogout records a session ending.
func (t *Trail) AdminLogout(ctx context.Context, username string) {
	t.emit(ctx, Record{
		Action:       ActionAdminLogout,
		Category:     CategoryAuth,
		ActorType:    "admin",
		ActorID:      username,
		ResourceType: "admin_session",
		ResourceID:   username,
		Success:      true,
	})
}

// AdminAuditViewed records an admin reading the audit trail.
func (t *Trail) AdminAuditViewed(ctx context.Context, username string) {
	t.emit(ctx, Record{
		Action:       ActionAdminAuditLogViewed,
		Category:     CategoryRead,
		ActorType:    "admin",
		ActorID:      username,
		ResourceType: "audit_log",
		Success:      true,
	})
}

// AdminViewed records an admin reading a submission.
func (t *Trail) AdminViewed(ctx context.Context, submissionID, username string) {
	t.emit(ctx, Record{
		Action:       ActionAdminSubmissionViewed,
		Category:     CategoryRead,
		ActorType:    "admin",
		ActorID:      username,
		ResourceType: "submission",
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Success:      true,
	})
}

// AdminDownloaded records an admin fetching a generated document.
func (t *Trail) AdminDownloaded(ctx context.Context, submissionID, username, documentType string) {
	t.emit(ctx, Record{
		Action:       ActionAdminSubmissionDownload,
		Category:     CategoryRead,
		ActorType:    "admin",
		ActorID:      username,
		ResourceType: documentType,
		ResourceID:   submissionID,
		SubmissionID: submissionID,
		Details:      map[string]any{"document_type": documentType},
		Success:      true,
	})
}

// RetentionExecuted records a retention sweep.
func (t *Trail) RetentionExecuted(ctx context.Context, deleted int, sweepErrs []string) {
	details := map[string]any{"deleted_count": deleted}
	if len(sweepErrs) > 0 {
		details["errors"] = sweepErrs
	}
	t.emit(ctx, Record{
		Action:       ActionRetentionPolicyExecuted,
		Category:     CategorySystem,
		ActorType:    "system",
		ResourceType: "retention_policy",
		Details:      details,
		Success:      len(sweepErrs) == 0,
	})
}
