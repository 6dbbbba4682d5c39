//go:build integration

package submission

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"willgen/pkg/platform/sentinel"
	"willgen/pkg/testutil/containers"
)

// =============================================================================
// Postgres Submission Store Integration Suite
// =============================================================================
// Justification for integration tests: the postgres store must honor the
// same contract the memory store does, and the locked-row guard lives in
// SQL rather than Go, so it only gets exercised against a real database.

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.ctx = context.Background()
	s.store = NewPostgresStore(s.pg.DB)
	s.Require().NoError(s.store.EnsureSchema(s.ctx))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	s.Require().NoError(s.pg.TruncateAll(s.ctx, "submissions"))
}

func (s *PostgresStoreSuite) newSubmission(id string, createdAt time.Time) *Submission {
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

func (s *PostgresStoreSuite) TestCreateGetRoundTrip() {
	sub := s.newSubmission("sub_1", s.now)
	s.Require().NoError(s.store.Create(s.ctx, sub))

	got, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal("sub_1", got.ID)
	s.Equal(StatusPending, got.Status)
	s.Equal(1, got.Version)
	s.True(got.GenerationTimestamp.Equal(s.now))
	s.JSONEq(string(sub.Payload), string(got.Payload))
}

func (s *PostgresStoreSuite) TestCreateDuplicateIDConflicts() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	err := s.store.Create(s.ctx, s.newSubmission("sub_1", s.now))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestGetUnknownIDNotFound() {
	_, err := s.store.Get(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateAndLockGuard() {
	s.Require().NoError(s.store.Create(s.ctx, s.newSubmission("sub_1", s.now)))

	sub, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	sub.Status = StatusCompleted
	sub.PDFPath = "generated_wills/sub_1.pdf"
	sub.PDFSHA256 = "aa11bb22cc33dd44aa11bb22cc33dd44aa11bb22cc33dd44aa11bb22cc33dd44"
	s.Require().NoError(s.store.Update(s.ctx, sub))

	sub.Lock("generation complete", s.now)
	s.Require().NoError(s.store.Update(s.ctx, sub))

	locked, err := s.store.Get(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.True(locked.IsLocked)
	s.Require().NotNil(locked.LockedAt)

	locked.ErrorMessage = "tamper attempt"
	err = s.store.Update(s.ctx, locked)
	s.ErrorIs(err, sentinel.ErrLocked)
}

func (s *PostgresStoreSuite) TestUpdateUnknownIDNotFound() {
	err := s.store.Update(s.ctx, s.newSubmission("missing", s.now))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListPagination() {
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

func (s *PostgresStoreSuite) TestListExpiredAndClearDocuments() {
	old := s.newSubmission("sub_old", s.now.AddDate(-8, 0, 0))
	old.PDFPath = "generated_wills/sub_old.pdf"
	old.Status = StatusLocked
	old.IsLocked = true
	recent := s.newSubmission("sub_recent", s.now)
	recent.PDFPath = "generated_wills/sub_recent.pdf"

	s.Require().NoError(s.store.Create(s.ctx, old))
	s.Require().NoError(s.store.Create(s.ctx, recent))

	cutoff := s.now.AddDate(-7, 0, 0)
	expired, err := s.store.ListExpired(s.ctx, cutoff)
	s.Require().NoError(err)
	s.Require().Len(expired, 1)
	s.Equal("sub_old", expired[0].ID)

	s.Require().NoError(s.store.ClearDocuments(s.ctx, "sub_old"))

	expired, err = s.store.ListExpired(s.ctx, cutoff)
	s.Require().NoError(err)
	s.Empty(expired)

	cleared, err := s.store.Get(s.ctx, "sub_old")
	s.Require().NoError(err)
	s.Empty(cleared.PDFPath)
	s.True(cleared.IsLocked, "clearing documents must not unlock the record")
}

func (s *PostgresStoreSuite) TestCountByStatus() {
	a := s.newSubmission("sub_a", s.now)
	b := s.newSubmission("sub_b", s.now)
	b.Status = StatusCompleted

	s.Require().NoError(s.store.Create(s.ctx, a))
	s.Require().NoError(s.store.Create(s.ctx, b))

	counts, err := s.store.CountByStatus(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, counts[StatusPending])
	s.Equal(1, counts[StatusCompleted])
}
