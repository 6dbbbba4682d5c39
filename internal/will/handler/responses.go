package handler

import (
	"time"

	"willgen/internal/will/service"
	"willgen/internal/will/store/submission"
	"willgen/internal/will/validation"
)

type validationBody struct {
	Valid    bool               `json:"valid"`
	Errors   []validation.Error `json:"errors"`
	Warnings []validation.Error `json:"warnings"`
}

func validationResponse(result *validation.Result) validationBody {
	body := validationBody{
		Valid:    result.OK(),
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
	if body.Errors == nil {
		body.Errors = []validation.Error{}
	}
	if body.Warnings == nil {
		body.Warnings = []validation.Error{}
	}
	return body
}

type generationBody struct {
	SubmissionID    string             `json:"submission_id"`
	Status          submission.Status  `json:"status"`
	Version         int                `json:"version"`
	GeneratedAt     time.Time          `json:"generated_at"`
	PageCount       int                `json:"page_count"`
	PDFSHA256       string             `json:"pdf_sha256"`
	ChecklistSHA256 string             `json:"checklist_sha256"`
	DownloadURL     string             `json:"download_url"`
	ChecklistURL    string             `json:"checklist_url"`
	Warnings        []validation.Error `json:"warnings,omitempty"`
}

func generationResponse(gen *service.Generation) generationBody {
	body := generationBody{
		SubmissionID:    gen.Submission.ID,
		Status:          gen.Submission.Status,
		Version:         gen.Submission.Version,
		GeneratedAt:     gen.Submission.GenerationTimestamp,
		PageCount:       gen.PDF.PageCount,
		PDFSHA256:       gen.Submission.PDFSHA256,
		ChecklistSHA256: gen.Submission.ChecklistSHA256,
		DownloadURL:     "/api/download/" + gen.Submission.ID,
		ChecklistURL:    "/api/download/" + gen.Submission.ID + "/checklist",
	}
	if gen.Validation != nil {
		body.Warnings = gen.Validation.Warnings
	}
	return body
}

type statusBody struct {
	SubmissionID string            `json:"submission_id"`
	Status       submission.Status `json:"status"`
	Version      int               `json:"version"`
	CreatedAt    time.Time         `json:"created_at"`
	IsLocked     bool              `json:"is_locked"`
	ParentID     string            `json:"parent_submission_id,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	EmailSent    bool              `json:"email_sent"`
}

func statusResponse(sub *submission.Submission) statusBody {
	return statusBody{
		SubmissionID: sub.ID,
		Status:       sub.Status,
		Version:      sub.Version,
		CreatedAt:    sub.CreatedAt,
		IsLocked:     sub.IsLocked,
		ParentID:     sub.ParentID,
		ErrorMessage: sub.ErrorMessage,
		EmailSent:    sub.EmailSent,
	}
}
