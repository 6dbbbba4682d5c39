package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists the audit trail in the audit_logs table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit_logs table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id             UUID PRIMARY KEY,
			ts             TIMESTAMPTZ NOT NULL,
			actor_type     VARCHAR(20) NOT NULL,
			actor_id       VARCHAR(100),
			action         VARCHAR(50) NOT NULL,
			category       VARCHAR(20) NOT NULL,
			submission_id  VARCHAR(64),
			resource_type  VARCHAR(50) NOT NULL,
			resource_id    VARCHAR(100),
			details        JSONB,
			success        BOOLEAN NOT NULL,
			error_message  TEXT,
			ip_address     VARCHAR(45),
			user_agent     VARCHAR(500),
			integrity_hash CHAR(64) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_submission ON audit_logs (submission_id, ts);
	`)
	if err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, record *Record) error {
	var details []byte
	if record.Details != nil {
		var err error
		details, err = json.Marshal(record.Details)
		if err != nil {
			return fmt.Errorf("audit: marshal details: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, ts, actor_type, actor_id, action, category,
			submission_id, resource_type, resource_id, details,
			success, error_message, ip_address, user_agent, integrity_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		record.ID, record.Timestamp, record.ActorType, nullable(record.ActorID),
		string(record.Action), string(record.Category),
		nullable(record.SubmissionID), record.ResourceType, nullable(record.ResourceID),
		details, record.Success, nullable(record.ErrorMessage),
		nullable(record.IPAddress), nullable(record.UserAgent), record.IntegrityHash,
	)
	if err != nil {
		return fmt.Errorf("audit: insert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubmission(ctx context.Context, submissionID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, actor_type, actor_id, action, category,
		       submission_id, resource_type, resource_id, details,
		       success, error_message, ip_address, user_agent, integrity_hash
		FROM audit_logs
		WHERE submission_id = $1
		ORDER BY ts ASC`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("audit: query by submission: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, actor_type, actor_id, action, category,
		       submission_id, resource_type, resource_id, details,
		       success, error_message, ip_address, user_agent, integrity_hash
		FROM audit_logs
		ORDER BY ts ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: query page: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var (
			r                                 Record
			actorID, submissionID, resourceID sql.NullString
			errMsg, ip, ua                    sql.NullString
			details                           []byte
			action, category                  string
		)
		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.ActorType, &actorID, &action, &category,
			&submissionID, &r.ResourceType, &resourceID, &details,
			&r.Success, &errMsg, &ip, &ua, &r.IntegrityHash,
		); err != nil {
			return nil, fmt.Errorf("audit: scan record: %w", err)
		}
		r.Action = Action(action)
		r.Category = Category(category)
		r.ActorID = actorID.String
		r.SubmissionID = submissionID.String
		r.ResourceID = resourceID.String
		r.ErrorMessage = errMsg.String
		r.IPAddress = ip.String
		r.UserAgent = ua.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &r.Details); err != nil {
				return nil, fmt.Errorf("audit: unmarshal details: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
