package submission

import (
	"context"
	"time"
)

// Store persists submissions.
//
// Implementations return sentinel.ErrNotFound for unknown IDs,
// sentinel.ErrConflict for duplicate creates, and sentinel.ErrLocked when an
// update targets a locked submission.
type Store interface {
	Create(ctx context.Context, sub *Submission) error
	Get(ctx context.Context, id string) (*Submission, error)
	Update(ctx context.Context, sub *Submission) error
	List(ctx context.Context, limit, offset int) ([]Submission, error)

	// ListExpired returns completed submissions whose documents predate the
	// cutoff and still have files on disk. The retention sweeper uses it.
	ListExpired(ctx context.Context, cutoff time.Time) ([]Submission, error)

	// ClearDocuments blanks the stored file paths after the retention sweeper
	// removes the files. It works on locked submissions too; only the
	// generated artifacts expire, never the submission record itself.
	ClearDocuments(ctx context.Context, id string) error

	CountByStatus(ctx context.Context) (map[Status]int, error)
}
