// Package audit records every significant action as an immutable trail.
// Records are append-only: stores never update or delete them, and each
// record carries an integrity hash so tampering is detectable after the
// fact.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action names the operation being recorded.
type Action string

const (
	ActionSubmissionCreated    Action = "submission_created"
	ActionSubmissionLocked     Action = "submission_locked"
	ActionSubmissionDuplicated Action = "submission_duplicated"

	ActionValidationPassed    Action = "validation_passed"
	ActionValidationFailed    Action = "validation_failed"
	ActionPDFGenerated        Action = "pdf_generated"
	ActionChecklistGenerated  Action = "checklist_generated"
	ActionRegenerationStarted Action = "regeneration_started"

	ActionEmailSent   Action = "email_sent"
	ActionEmailFailed Action = "email_failed"

	ActionAdminLogin              Action = "admin_login"
	ActionAdminLoginFailed        Action = "admin_login_failed"
	ActionAdminLogout             Action = "admin_logout"
	ActionAdminSubmissionViewed   Action = "admin_submission_viewed"
	ActionAdminSubmissionDownload Action = "admin_submission_downloaded"
	ActionAdminAuditLogViewed     Action = "admin_audit_log_viewed"
	ActionRetentionPolicyExecuted Action = "retention_policy_executed"
	ActionError                   Action = "error_occurred"
)

// Category groups actions for filtering.
type Category string

const (
	CategoryCreate   Category = "create"
	CategoryRead     Category = "read"
	CategoryUpdate   Category = "update"
	CategoryDelete   Category = "delete"
	CategoryGenerate Category = "generate"
	CategorySend     Category = "send"
	CategoryAuth     Category = "auth"
	CategorySystem   Category = "system"
)

// Record is one entry in the audit trail.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	ActorType string `json:"actor_type"` // user, admin, system
	ActorID   string `json:"actor_id,omitempty"`

	Action   Action   `json:"action"`
	Category Category `json:"action_category"`

	SubmissionID string `json:"submission_id,omitempty"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id,omitempty"`

	Details map[string]any `json:"details,omitempty"`

	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	IntegrityHash string `json:"integrity_hash"`
}

// NewRecord creates a sealed record: the ID is assigned and the integrity
// hash computed over the content fields.
func NewRecord(r Record) (*Record, error) {
	r.ID = uuid.NewString()
	hash, err := r.computeIntegrityHash()
	if err != nil {
		return nil, err
	}
	r.IntegrityHash = hash
	return &r, nil
}

// computeIntegrityHash covers the who/what/when of the record. Details are
// serialized to JSON, whose map keys Go sorts, so the hash is stable.
func (r *Record) computeIntegrityHash() (string, error) {
	detailsJSON := ""
	if r.Details != nil {
		b, err := json.Marshal(r.Details)
		if err != nil {
			return "", fmt.Errorf("audit: marshal details: %w", err)
		}
		detailsJSON = string(b)
	}

	content := fmt.Sprintf("%s%s%s%s%s%s%s",
		r.Timestamp.UTC().Format(time.RFC3339Nano),
		r.ActorType, r.ActorID, r.Action, r.ResourceType, r.ResourceID, detailsJSON)
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:]), nil
}

// VerifyIntegrity reports whether the record's content still matches its
// stored hash.
func (r *Record) VerifyIntegrity() bool {
	hash, err := r.computeIntegrityHash()
	if err != nil {
		return false
	}
	return hash == r.IntegrityHash
}
