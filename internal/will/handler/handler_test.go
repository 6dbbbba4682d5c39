package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"willgen/internal/audit"
	"willgen/internal/platform/middleware"
	"willgen/internal/will/payload"
	"willgen/internal/will/service"
	"willgen/internal/will/store/submission"
)

// =============================================================================
// Will Handler Test Suite
// =============================================================================
// Justification for unit tests: the handlers are the contract the frontend
// codes against. Status codes, validation envelopes, and download headers
// are all load-bearing.

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	store  *submission.MemoryStore
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.store = submission.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := audit.NewTrail(audit.NewMemoryStore(), logger)
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := service.New(s.store, trail, s.T().TempDir(),
		service.WithNow(func() time.Time { return at }),
		service.WithLogger(logger))

	h := New(svc, logger)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(v))
}

func validPayload() payload.Raw {
	return payload.Raw{
		"eligibility": map[string]any{
			"confirm_age_over_18":      true,
			"confirm_qld":              true,
			"confirm_not_legal_advice": true,
		},
		"will_maker": map[string]any{
			"full_name":  "Margaret Anne Wilson",
			"dob":        "1960-04-12",
			"occupation": "Retired teacher",
			"address": map[string]any{
				"street":   "14 Jacaranda Street",
				"suburb":   "Toowong",
				"state":    "QLD",
				"postcode": "4066",
			},
			"email":               "margaret.wilson@example.com",
			"phone":               "07 3123 4567",
			"relationship_status": "single",
		},
		"has_children": false,
		"dependants":   map[string]any{"has_other_dependants": false},
		"executors": map[string]any{
			"mode": "one",
			"primary": []any{
				map[string]any{
					"full_name":    "David Wilson",
					"relationship": "Brother",
					"address": map[string]any{
						"street":   "22 River Terrace",
						"suburb":   "Kangaroo Point",
						"state":    "QLD",
						"postcode": "4169",
					},
				},
			},
			"backup": map[string]any{"mode": "none"},
		},
		"distribution": map[string]any{"scheme": "custom_structured"},
		"beneficiaries": []any{
			map[string]any{
				"id":           "ben_1",
				"type":         "individual",
				"full_name":    "David Wilson",
				"relationship": "Brother",
				"address": map[string]any{
					"street":   "22 River Terrace",
					"suburb":   "Kangaroo Point",
					"state":    "QLD",
					"postcode": "4169",
				},
				"gift_role": "residue",
			},
		},
		"survivorship": map[string]any{"days": 30},
		"substitution": map[string]any{"rule": "to_their_children"},
		"minor_trusts": map[string]any{"enabled": false},
		"declarations": map[string]any{
			"confirm_reviewed":        true,
			"confirm_complex_advice":  true,
			"confirm_super_and_joint": true,
			"confirm_signing_witness": true,
		},
	}
}

func (s *HandlerSuite) generate() generationBody {
	rec := s.postJSON("/api/generate", validPayload())
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var body generationBody
	s.decode(rec, &body)
	return body
}

// =============================================================================
// Validation Endpoint
// =============================================================================

func (s *HandlerSuite) TestValidateAcceptsValidPayload() {
	rec := s.postJSON("/api/validate", validPayload())
	s.Equal(http.StatusOK, rec.Code)

	var body validationBody
	s.decode(rec, &body)
	s.True(body.Valid)
	s.Empty(body.Errors)
}

func (s *HandlerSuite) TestValidateReportsErrors() {
	rec := s.postJSON("/api/validate", payload.Raw{"will_maker": map[string]any{}})
	s.Equal(http.StatusOK, rec.Code)

	var body validationBody
	s.decode(rec, &body)
	s.False(body.Valid)
	s.NotEmpty(body.Errors)
}

func (s *HandlerSuite) TestValidateRejectsEmptyBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/validate", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Generation Endpoint
// =============================================================================

func (s *HandlerSuite) TestGenerateReturnsDocumentMetadata() {
	body := s.generate()

	s.NotEmpty(body.SubmissionID)
	s.Equal(submission.StatusLocked, body.Status)
	s.Equal(1, body.Version)
	s.Len(body.PDFSHA256, 64)
	s.Len(body.ChecklistSHA256, 64)
	s.GreaterOrEqual(body.PageCount, 1)
	s.Equal("/api/download/"+body.SubmissionID, body.DownloadURL)
	s.Equal("/api/download/"+body.SubmissionID+"/checklist", body.ChecklistURL)
}

func (s *HandlerSuite) TestGenerateRejectsInvalidPayload() {
	rec := s.postJSON("/api/generate", payload.Raw{})
	s.Equal(http.StatusBadRequest, rec.Code)

	var body validationBody
	s.decode(rec, &body)
	s.False(body.Valid)
	s.NotEmpty(body.Errors)
}

// =============================================================================
// Regeneration Endpoint
// =============================================================================

func (s *HandlerSuite) TestRegenerateForksNewVersion() {
	first := s.generate()

	rec := s.postJSON("/api/regenerate/"+first.SubmissionID, nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var second generationBody
	s.decode(rec, &second)
	s.NotEqual(first.SubmissionID, second.SubmissionID)
	s.Equal(2, second.Version)
}

func (s *HandlerSuite) TestRegenerateUnknownSubmission() {
	rec := s.postJSON("/api/regenerate/missing", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

// =============================================================================
// Status and Verification Endpoints
// =============================================================================

func (s *HandlerSuite) TestStatusEndpoint() {
	gen := s.generate()

	rec := s.get("/api/status/" + gen.SubmissionID)
	s.Equal(http.StatusOK, rec.Code)

	var body statusBody
	s.decode(rec, &body)
	s.Equal(gen.SubmissionID, body.SubmissionID)
	s.Equal(submission.StatusLocked, body.Status)
	s.True(body.IsLocked)
}

func (s *HandlerSuite) TestStatusUnknownSubmission() {
	rec := s.get("/api/status/missing")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestVerifyEndpoint() {
	gen := s.generate()

	rec := s.get("/api/verify/" + gen.SubmissionID)
	s.Equal(http.StatusOK, rec.Code)

	var body service.VerifyResult
	s.decode(rec, &body)
	s.True(body.Verified)
	s.Equal(gen.PDFSHA256, body.ComputedHash)
}

// =============================================================================
// Download Endpoints
// =============================================================================

func (s *HandlerSuite) TestDownloadWill() {
	gen := s.generate()

	rec := s.get("/api/download/" + gen.SubmissionID)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), gen.SubmissionID+".pdf")
	s.True(bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func (s *HandlerSuite) TestDownloadChecklist() {
	gen := s.generate()

	rec := s.get("/api/download/" + gen.SubmissionID + "/checklist")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Disposition"), "_checklist.pdf")
}

func (s *HandlerSuite) TestDownloadUnknownSubmission() {
	rec := s.get("/api/download/missing")
	s.Equal(http.StatusNotFound, rec.Code)
}

// =============================================================================
// Explanation Endpoint
// =============================================================================

func (s *HandlerSuite) TestExplainEndpoint() {
	rec := s.postJSON("/api/explain", validPayload())
	s.Equal(http.StatusOK, rec.Code)

	var body struct {
		Summary struct {
			Overview struct {
				WillMakerName string `json:"will_maker_name"`
			} `json:"overview"`
		} `json:"summary"`
		Clauses struct {
			TotalClauses int `json:"total_clauses"`
		} `json:"clauses"`
	}
	s.decode(rec, &body)
	s.Equal("Margaret Anne Wilson", body.Summary.Overview.WillMakerName)
	s.Greater(body.Clauses.TotalClauses, 5)
}

func (s *HandlerSuite) TestExplainInvalidPayload() {
	rec := s.postJSON("/api/explain", payload.Raw{})
	s.Equal(http.StatusBadRequest, rec.Code)
}
