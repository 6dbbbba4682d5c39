package admin

import (
	"time"

	"willgen/internal/will/store/submission"
)

type submissionSummary struct {
	SubmissionID string            `json:"submission_id"`
	Status       submission.Status `json:"status"`
	Version      int               `json:"version"`
	CreatedAt    time.Time         `json:"created_at"`
	IsLocked     bool              `json:"is_locked"`
	ParentID     string            `json:"parent_submission_id,omitempty"`
	PDFSHA256    string            `json:"pdf_sha256,omitempty"`
	EmailSent    bool              `json:"email_sent"`
}

func summarize(sub *submission.Submission) submissionSummary {
	return submissionSummary{
		SubmissionID: sub.ID,
		Status:       sub.Status,
		Version:      sub.Version,
		CreatedAt:    sub.CreatedAt,
		IsLocked:     sub.IsLocked,
		ParentID:     sub.ParentID,
		PDFSHA256:    sub.PDFSHA256,
		EmailSent:    sub.EmailSent,
	}
}

type submissionDetail struct {
	submissionSummary
	GenerationTimestamp time.Time  `json:"generation_timestamp"`
	IPAddress           string     `json:"ip_address,omitempty"`
	UserAgent           string     `json:"user_agent,omitempty"`
	ChecklistSHA256     string     `json:"checklist_sha256,omitempty"`
	ErrorMessage        string     `json:"error_message,omitempty"`
	LockedAt            *time.Time `json:"locked_at,omitempty"`
	LockedReason        string     `json:"locked_reason,omitempty"`
	EmailRecipient      string     `json:"email_recipient,omitempty"`
	EmailError          string     `json:"email_error,omitempty"`
}

// detail exposes operational metadata but never the payload: the will's
// contents stay off the console.
func detail(sub *submission.Submission) submissionDetail {
	return submissionDetail{
		submissionSummary:   summarize(sub),
		GenerationTimestamp: sub.GenerationTimestamp,
		IPAddress:           sub.IPAddress,
		UserAgent:           sub.UserAgent,
		ChecklistSHA256:     sub.ChecklistSHA256,
		ErrorMessage:        sub.ErrorMessage,
		LockedAt:            sub.LockedAt,
		LockedReason:        sub.LockedReason,
		EmailRecipient:      sub.EmailRecipient,
		EmailError:          sub.EmailError,
	}
}
