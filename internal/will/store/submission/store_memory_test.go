package submission

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"willgen/pkg/platform/sentinel"
)

// =============================================================================
// Submission Store Test Suite
// =============================================================================
// Justification for unit tests: the store enforces the lifecycle invariants
// the service trusts. Locked submissions must be immutable, duplicates must
// fork a new version instead of mutating history, and the sentinel error
// contract must match what the handlers translate to HTTP.

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newSubmission(id string, createdAt time.Time) *Submission {
	return &Submission{
		ID:                  id,
		GenerationTimestamp: createdAt,
		CreatedAt:           createdAt,
		IPAddress:           "203.0.113.7",
		UserAgent:           "test-agent",
		Payload:             json.RawMessage(`{"will_maker":{"full_name":"Margaret Anne Wilson"}}`),
		Status:              StatusPending,
		Version:             1,
	}
}

// =============================================================================
// Create and Get Tests
// =============================================================================

func (s *MemoryStoreSuite) TestCreateAndGet() {
	sub := s.newSubmission("sub_1", s.now)
	s.Require().NoError(s.store.Create(s.ctx, sub))

	got, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal("sub_1", got.ID)
	s.Equal(StatusPending, got.Status)
	s.Equal(1, got.Version)
	s.JSONEq(string(sub.Payload), string(got.Payload))
}

func (s *MemoryStoreSuite) TestCreateDuplicateIDConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	err := s.store.Create(s.ctx, s.newSubmission("sub_1", s.now))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestGetUnknownIDNotFound() {
	_, err := s.store.Get(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestGetReturnsCopy() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	first, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	first.Status = StatusError

	second, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(StatusPending, second.Status)
}

// =============================================================================
// Update and Locking Tests
// =============================================================================

func (s *MemoryStoreSuite) TestUpdateTransitionsStatus() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	sub, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	sub.Status = StatusCompleted
	sub.PDFPath = "generated_wills/sub_1.pdf"
	sub.PDFSHA256 = "aa11"
	s.Require().NoError(s.store.Update(s.ctx, sub))

	got, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal(StatusCompleted, got.Status)
	s.Equal("generated_wills/sub_1.pdf", got.PDFPath)
}

func (s *MemoryStoreSuite) TestUpdateUnknownIDNotFound() {
	err := s.store.Update(s.ctx, s.newSubmission("missing", s.now))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestLockingTransitionSucceedsOnce() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	sub, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	sub.Lock("generation complete", s.now)
	s.Require().NoError(s.store.Update(s.ctx, sub))

	got, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.True(got.IsLocked)
	s.Equal(StatusLocked, got.Status)
	s.Require().NotNil(got.LockedAt)
	s.Equal(s.now, *got.LockedAt)
}

func (s *MemoryStoreSuite) TestLockedSubmissionRejectsUpdates() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	sub, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	sub.Lock("generation complete", s.now)
	s.Require().NoError(s.store.Update(s.ctx, sub))

	sub.ErrorMessage = "tamper attempt"
	err = s.store.Update(s.ctx, sub)
	s.ErrorIs(err, sentinel.ErrLocked)
}

// =============================================================================
// Duplication Tests
// =============================================================================

func (s *MemoryStoreSuite) TestDuplicateForksNewVersion() {
	parent := s.newSubmission("sub_1", s.now)
	parent.PDFSHA256 = "aa11"
	parent.Lock("generation complete", s.now)
	s.Require().NoError(s.store.Create(s.ctx, parent))

	later := s.now.Add(time.Hour)
	child, err := parent.Duplicate("sub_2", later)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, child))

	got, err := s.store.Get(s.ctx, "sub_2")
	s.Require().NoError(err)
	s.Equal("sub_1", got.ParentID)
	s.Equal(2, got.Version)
	s.Equal(StatusPending, got.Status)
	s.Equal(later, got.GenerationTimestamp)
	s.False(got.IsLocked)
	s.JSONEq(string(parent.Payload), string(got.Payload))
}

func (s *MemoryStoreSuite) TestDuplicateRequiresGeneratedDocument() {
	parent := s.newSubmission("sub_1", s.now)

	_, err := parent.Duplicate("sub_2", s.now)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	parent.Status = StatusGenerating
	_, err = parent.Duplicate("sub_2", s.now)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *MemoryStoreSuite) TestDuplicateAcceptsCompletedUnlockedParent() {
	// A completed submission whose lock transition failed still has a final
	// document; forking from it must work like forking from a locked one.
	parent := s.newSubmission("sub_1", s.now)
	parent.Status = StatusCompleted
	parent.PDFSHA256 = "aa11"

	child, err := parent.Duplicate("sub_2", s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal("sub_1", child.ParentID)
	s.Equal(2, child.Version)
}

// =============================================================================
// Listing and Retention Tests
// =============================================================================

func (s *MemoryStoreSuite) TestListOrdersNewestFirst() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_a", s.now)))
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_b", s.now.Add(time.Minute))))
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_c", s.now.Add(2*time.Minute))))

	page, err := s.store.List(s.ctx, 2, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("sub_c", page[0].ID)
	s.Equal("sub_b", page[1].ID)

	rest, err := s.store.List(s.ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal("sub_a", rest[0].ID)
}

func (s *MemoryStoreSuite) TestListOffsetPastEndReturnsEmpty() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	page, err := s.store.List(s.ctx, 10, 5)
	s.Require().NoError(err)
	s.Empty(page)
}

func (s *MemoryStoreSuite) TestListExpiredFiltersByCutoffAndDocuments() {
	old := s.newSubmission("sub_old", s.now.AddDate(-8, 0, 0))
	old.PDFPath = "generated_wills/sub_old.pdf"
	old.Status = StatusLocked
	recent := s.newSubmission("sub_recent", s.now)
	recent.PDFPath = "generated_wills/sub_recent.pdf"
	oldNoDocs := s.newSubmission("sub_cleared", s.now.AddDate(-8, 0, 0))

	s.Require().NoError(s.store.Create(s.ctx, old))
	s.Require().NoError(s.store.Create(s.ctx, recent))
	s.Require().NoError(s.store.Create(s.ctx, oldNoDocs))

	cutoff := s.now.AddDate(-7, 0, 0)
	expired, err := s.store.ListExpired(s.ctx, cutoff)
	s.Require().NoError(err)
	s.Require().Len(expired, 1)
	s.Equal("sub_old", expired[0].ID)
}

func (s *MemoryStoreSuite) TestClearDocumentsWorksOnLockedSubmissions() {
	sub := s.newSubmission("sub_1", s.now)
	sub.PDFPath = "generated_wills/sub_1.pdf"
	sub.ChecklistPath = "generated_wills/sub_1_checklist.pdf"
	sub.PDFSHA256 = "aa11"
	sub.Lock("generation complete", s.now)
	s.Require().NoError(s.store.Create(s.ctx, sub))

	s.Require().NoError(s.store.ClearDocuments(s.ctx, "sub_1"))

	got, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.Empty(got.PDFPath)
	s.Empty(got.ChecklistPath)
	// Hashes and the record itself survive.
	s.Equal("aa11", got.PDFSHA256)
	s.True(got.IsLocked)
}

func (s *MemoryStoreSuite) TestCountByStatus() {
	a := s.newSubmission("sub_a", s.now)
	b := s.newSubmission("sub_b", s.now)
	b.Status = StatusCompleted
	c := s.newSubmission("sub_c", s.now)
	c.Status = StatusCompleted

	s.Require().NoError(s.store.Create(s.ctx, a))
	s.Require().NoError(s.store.Create(s.ctx, b))
	s.Require().NoError(s.store.Create(s.ctx, c))

	counts, err := s.store.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, counts[StatusPending])
	s.Equal(2, counts[StatusCompleted])
}

// =============================================================================
// Regeneration Eligibility Tests
// =============================================================================

func (s *MemoryStoreSuite) TestCanRegenerate() {
	sub := s.newSubmission("sub_1", s.now)
	s.False(sub.CanRegenerate(), "pending submissions have nothing to regenerate")

	sub.Status = StatusCompleted
	sub.PDFSHA256 = "aa11"
	s.True(sub.CanRegenerate())

	sub.Lock("generation complete", s.now)
	s.True(sub.CanRegenerate(), "locked submissions regenerate by forking")

	errored := s.newSubmission("sub_2", s.now)
	errored.Status = StatusError
	s.False(errored.CanRegenerate())
}
