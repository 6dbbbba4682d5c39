package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"willgen/pkg/requestcontext"
)

// =============================================================================
// Audit Trail Test Suite
// =============================================================================
// Justification for unit tests: the trail is the compliance record for every
// generation. Integrity hashing, append-only storage, and best-effort
// emission each carry invariants that must hold regardless of transport.

type AuditSuite struct {
	suite.Suite
	store *MemoryStore
	trail *Trail
	now   time.Time
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.trail = NewTrail(s.store, logger, WithNow(func() time.Time { return s.now }))
}

// =============================================================================
// Record Integrity Tests
// =============================================================================

func (s *AuditSuite) TestNewRecordSealsIntegrityHash() {
	record, err := NewRecord(Record{
		Timestamp:    s.now,
		ActorType:    "system",
		Action:       ActionPDFGenerated,
		Category:     CategoryGenerate,
		ResourceType: "pdf",
		ResourceID:   "abcd1234",
		Success:      true,
	})
	s.Require().NoError(err)

	s.NotEmpty(record.ID)
	s.Len(record.IntegrityHash, 64)
	s.True(record.VerifyIntegrity())
}

func (s *AuditSuite) TestTamperedRecordFailsVerification() {
	record, err := NewRecord(Record{
		Timestamp:    s.now,
		ActorType:    "system",
		Action:       ActionSubmissionCreated,
		Category:     CategoryCreate,
		ResourceType: "submission",
		ResourceID:   "sub-1",
		Success:      true,
	})
	s.Require().NoError(err)

	record.ResourceID = "sub-2"
	s.False(record.VerifyIntegrity())
}

func (s *AuditSuite) TestDetailsAffectHash() {
	base := Record{
		Timestamp:    s.now,
		ActorType:    "system",
		Action:       ActionPDFGenerated,
		Category:     CategoryGenerate,
		ResourceType: "pdf",
		Success:      true,
	}

	first, err := NewRecord(base)
	s.Require().NoError(err)

	base.Details = map[string]any{"pdf_hash": "deadbeef"}
	second, err := NewRecord(base)
	s.Require().NoError(err)

	s.NotEqual(first.IntegrityHash, second.IntegrityHash)
}

// =============================================================================
// Trail Emission Tests
// =============================================================================

func (s *AuditSuite) TestSubmissionLifecycleTrail() {
	ctx := context.Background()

	s.trail.SubmissionCreated(ctx, "sub-1")
	s.trail.ValidationResult(ctx, "sub-1", true, 0)
	s.trail.PDFGenerated(ctx, "sub-1", "a3f1c2d4e5b6a7988877665544332211", false)
	s.trail.SubmissionLocked(ctx, "sub-1", "generation_complete")

	records, err := s.store.ListBySubmission(ctx, "sub-1")
	s.Require().NoError(err)
	s.Require().Len(records, 4)

	s.Equal(ActionSubmissionCreated, records[0].Action)
	s.Equal(ActionValidationPassed, records[1].Action)
	s.Equal(ActionPDFGenerated, records[2].Action)
	s.Equal(ActionSubmissionLocked, records[3].Action)
	for _, r := range records {
		s.True(r.VerifyIntegrity())
	}
}

func (s *AuditSuite) TestValidationFailureCapturesErrorCount() {
	ctx := context.Background()
	s.trail.ValidationResult(ctx, "sub-2", false, 7)

	records, err := s.store.ListBySubmission(ctx, "sub-2")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(ActionValidationFailed, records[0].Action)
	s.False(records[0].Success)
	s.EqualValues(7, records[0].Details["error_count"])
}

func (s *AuditSuite) TestUserActorDefaultsToClientIP() {
	ctx := requestcontext.WithClientIP(context.Background(), "203.0.113.9")
	s.trail.SubmissionCreated(ctx, "sub-3")

	records, err := s.store.ListBySubmission(ctx, "sub-3")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("203.0.113.9", records[0].ActorID)
	s.Equal("203.0.113.9", records[0].IPAddress)
}

func (s *AuditSuite) TestPDFHashTruncatedForResourceID() {
	ctx := context.Background()
	fullHash := "a3f1c2d4e5b6a7988877665544332211a3f1c2d4e5b6a7988877665544332211"
	s.trail.PDFGenerated(ctx, "sub-4", fullHash, true)

	records, err := s.store.ListBySubmission(ctx, "sub-4")
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(ActionRegenerationStarted, records[0].Action)
	s.Equal(fullHash[:16], records[0].ResourceID)
	s.Equal(fullHash, records[0].Details["pdf_hash"])
}

// =============================================================================
// Store and Trail Verification Tests
// =============================================================================

func (s *AuditSuite) TestListPagination() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		s.trail.SubmissionCreated(ctx, "sub-page")
	}

	page, err := s.store.List(ctx, 2, 0)
	s.Require().NoError(err)
	s.Len(page, 2)

	page, err = s.store.List(ctx, 10, 4)
	s.Require().NoError(err)
	s.Len(page, 1)

	page, err = s.store.List(ctx, 10, 99)
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *AuditSuite) TestVerifyTrailFlagsTampering() {
	ctx := context.Background()
	s.trail.SubmissionCreated(ctx, "sub-a")
	s.trail.SubmissionCreated(ctx, "sub-b")

	// Corrupt one stored record directly.
	s.store.mu.Lock()
	s.store.records[1].ActorType = "admin"
	tamperedID := s.store.records[1].ID
	s.store.mu.Unlock()

	report, err := VerifyTrail(ctx, s.store)
	s.Require().NoError(err)
	s.Equal(1, report.Valid)
	s.Equal(1, report.Invalid)
	s.Equal([]string{tamperedID}, report.InvalidIDs)
}
