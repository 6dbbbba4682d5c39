package audit

import "context"

// Store persists audit records. Implementations are append-only: there is no
// update or delete.
type Store interface {
	Append(ctx context.Context, record *Record) error
	ListBySubmission(ctx context.Context, submissionID string) ([]Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
}

// IntegrityReport is the outcome of sweeping the trail for tampering.
type IntegrityReport struct {
	Valid      int      `json:"valid"`
	Invalid    int      `json:"invalid"`
	InvalidIDs []string `json:"invalid_ids,omitempty"`
}

// VerifyTrail re-hashes every record in the store. Paging keeps memory flat
// on large trails.
func VerifyTrail(ctx context.Context, store Store) (*IntegrityReport, error) {
	const page = 500

	report := &IntegrityReport{}
	for offset := 0; ; offset += page {
		records, err := store.List(ctx, page, offset)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return report, nil
		}
		for i := range records {
			if records[i].VerifyIntegrity() {
				report.Valid++
			} else {
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, records[i].ID)
			}
		}
		if len(records) < page {
			return report, nil
		}
	}
}
