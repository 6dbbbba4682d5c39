// Package submission persists will generation submissions with versioning
// and locking. A locked submission is immutable: regeneration forks a new
// version instead of mutating history.
package submission

import (
	"encoding/json"
	"time"

	"willgen/pkg/platform/sentinel"
)

// Status is the submission lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidating Status = "validating"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusLocked     Status = "locked"
)

// Submission is one will generation request and its outcome.
type Submission struct {
	ID string `json:"id"`

	// GenerationTimestamp is fixed at creation and used for all rendering,
	// so regenerating from the stored payload reproduces identical bytes.
	GenerationTimestamp time.Time `json:"generation_timestamp"`

	CreatedAt time.Time `json:"created_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`

	// Payload is the normalized payload serialized with stable key order.
	Payload json.RawMessage `json:"-"`

	PDFPath         string `json:"-"`
	PDFSHA256       string `json:"pdf_sha256,omitempty"`
	ChecklistPath   string `json:"-"`
	ChecklistSHA256 string `json:"checklist_pdf_sha256,omitempty"`

	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	IsLocked     bool       `json:"is_locked"`
	LockedAt     *time.Time `json:"locked_at,omitempty"`
	LockedReason string     `json:"locked_reason,omitempty"`

	ParentID string `json:"parent_submission_id,omitempty"`
	Version  int    `json:"version_number"`

	EmailSent      bool       `json:"email_sent"`
	EmailSentAt    *time.Time `json:"email_sent_at,omitempty"`
	EmailRecipient string     `json:"email_recipient,omitempty"`
	EmailError     string     `json:"email_error,omitempty"`
}

// Lock makes the submission immutable.
func (s *Submission) Lock(reason string, at time.Time) {
	s.IsLocked = true
	s.LockedAt = &at
	s.LockedReason = reason
	s.Status = StatusLocked
}

// CanRegenerate reports whether a new version can be forked from this
// submission.
func (s *Submission) CanRegenerate() bool {
	return s.PDFSHA256 != "" && (s.Status == StatusCompleted || s.Status == StatusLocked)
}

// Duplicate forks a new pending version carrying the same payload. The
// source must satisfy CanRegenerate; an in-flight submission must finish
// first. A completed submission whose lock transition failed is still a
// valid fork source: its document and payload are final.
func (s *Submission) Duplicate(newID string, at time.Time) (*Submission, error) {
	if !s.CanRegenerate() {
		return nil, sentinel.ErrInvalidState
	}
	return &Submission{
		ID:                  newID,
		GenerationTimestamp: at,
		CreatedAt:           at,
		IPAddress:           s.IPAddress,
		UserAgent:           s.UserAgent,
		Payload:             s.Payload,
		Status:              StatusPending,
		ParentID:            s.ID,
		Version:             s.Version + 1,
	}, nil
}
