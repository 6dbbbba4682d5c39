package submission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"willgen/pkg/platform/sentinel"
)

// PostgresStore persists submissions in the submissions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the submissions table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS submissions (
			id                   VARCHAR(64) PRIMARY KEY,
			generation_timestamp TIMESTAMPTZ NOT NULL,
			created_at           TIMESTAMPTZ NOT NULL,
			ip_address           VARCHAR(45),
			user_agent           VARCHAR(500),
			payload              JSONB NOT NULL,
			pdf_path             VARCHAR(500),
			pdf_sha256           CHAR(64),
			checklist_path       VARCHAR(500),
			checklist_sha256     CHAR(64),
			status               VARCHAR(20) NOT NULL,
			error_message        TEXT,
			is_locked            BOOLEAN NOT NULL DEFAULT FALSE,
			locked_at            TIMESTAMPTZ,
			locked_reason        VARCHAR(200),
			parent_id            VARCHAR(64),
			version              INTEGER NOT NULL DEFAULT 1,
			email_sent           BOOLEAN NOT NULL DEFAULT FALSE,
			email_sent_at        TIMESTAMPTZ,
			email_recipient      VARCHAR(255),
			email_error          TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions (created_at);
		CREATE INDEX IF NOT EXISTS idx_submissions_parent ON submissions (parent_id);
	`)
	if err != nil {
		return fmt.Errorf("submission: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, sub *Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (
			id, generation_timestamp, created_at, ip_address, user_agent, payload,
			pdf_path, pdf_sha256, checklist_path, checklist_sha256,
			status, error_message, is_locked, locked_at, locked_reason,
			parent_id, version, email_sent, email_sent_at, email_recipient, email_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		          $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		sub.ID, sub.GenerationTimestamp, sub.CreatedAt,
		nullString(sub.IPAddress), nullString(sub.UserAgent), []byte(sub.Payload),
		nullString(sub.PDFPath), nullString(sub.PDFSHA256),
		nullString(sub.ChecklistPath), nullString(sub.ChecklistSHA256),
		string(sub.Status), nullString(sub.ErrorMessage),
		sub.IsLocked, sub.LockedAt, nullString(sub.LockedReason),
		nullString(sub.ParentID), sub.Version,
		sub.EmailSent, sub.EmailSentAt, nullString(sub.EmailRecipient), nullString(sub.EmailError),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("submission: insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("submission: get: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) Update(ctx context.Context, sub *Submission) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET
			pdf_path = $2, pdf_sha256 = $3, checklist_path = $4, checklist_sha256 = $5,
			status = $6, error_message = $7, is_locked = $8, locked_at = $9, locked_reason = $10,
			email_sent = $11, email_sent_at = $12, email_recipient = $13, email_error = $14
		WHERE id = $1 AND is_locked = FALSE`,
		sub.ID,
		nullString(sub.PDFPath), nullString(sub.PDFSHA256),
		nullString(sub.ChecklistPath), nullString(sub.ChecklistSHA256),
		string(sub.Status), nullString(sub.ErrorMessage),
		sub.IsLocked, sub.LockedAt, nullString(sub.LockedReason),
		sub.EmailSent, sub.EmailSentAt, nullString(sub.EmailRecipient), nullString(sub.EmailError),
	)
	if err != nil {
		return fmt.Errorf("submission: update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submission: update rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish missing from locked.
		var locked bool
		err := s.db.QueryRowContext(ctx,
			`SELECT is_locked FROM submissions WHERE id = $1`, sub.ID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("submission: update check: %w", err)
		}
		if locked {
			return sentinel.ErrLocked
		}
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM submissions
		ORDER BY created_at DESC, id ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("submission: list: %w", err)
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (s *PostgresStore) ListExpired(ctx context.Context, cutoff time.Time) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM submissions
		WHERE created_at < $1 AND (pdf_path IS NOT NULL OR checklist_path IS NOT NULL)
		ORDER BY created_at ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("submission: list expired: %w", err)
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func (s *PostgresStore) ClearDocuments(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET pdf_path = NULL, checklist_path = NULL WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("submission: clear documents: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("submission: clear documents rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("submission: count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("submission: scan count: %w", err)
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

const selectColumns = `
	SELECT id, generation_timestamp, created_at, ip_address, user_agent, payload,
	       pdf_path, pdf_sha256, checklist_path, checklist_sha256,
	       status, error_message, is_locked, locked_at, locked_reason,
	       parent_id, version, email_sent, email_sent_at, email_recipient, email_error`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*Submission, error) {
	var (
		sub                              Submission
		ip, ua, errMsg, lockedReason     sql.NullString
		pdfPath, pdfHash, clPath, clHash sql.NullString
		parentID, emailRecip, emailErr   sql.NullString
		status                           string
		payload                          []byte
	)
	if err := row.Scan(
		&sub.ID, &sub.GenerationTimestamp, &sub.CreatedAt, &ip, &ua, &payload,
		&pdfPath, &pdfHash, &clPath, &clHash,
		&status, &errMsg, &sub.IsLocked, &sub.LockedAt, &lockedReason,
		&parentID, &sub.Version, &sub.EmailSent, &sub.EmailSentAt, &emailRecip, &emailErr,
	); err != nil {
		return nil, err
	}
	sub.IPAddress = ip.String
	sub.UserAgent = ua.String
	sub.Payload = payload
	sub.PDFPath = pdfPath.String
	sub.PDFSHA256 = pdfHash.String
	sub.ChecklistPath = clPath.String
	sub.ChecklistSHA256 = clHash.String
	sub.Status = Status(status)
	sub.ErrorMessage = errMsg.String
	sub.LockedReason = lockedReason.String
	sub.ParentID = parentID.String
	sub.EmailRecipient = emailRecip.String
	sub.EmailError = emailErr.String
	return &sub, nil
}

func scanSubmissions(rows *sql.Rows) ([]Submission, error) {
	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("submission: scan row: %w", err)
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
