package submission

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/audit/publisher"
	auditmem "veridoc/pkg/platform/audit/store/memory"
)

// =============================================================================
// Submission Service Test Suite
// =============================================================================
// Justification for unit tests: the submission service owns the status state
// machine and the one-pending-per-document-type rule; both are cheaper to
// exercise here than through HTTP round trips.

type SubmissionServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	auditStore *auditmem.InMemoryStore
	service    *Service
	userID     domain.UserID
	reviewerID domain.ReviewerID
}

func TestSubmissionServiceSuite(t *testing.T) {
	suite.Run(t, new(SubmissionServiceSuite))
}

func (s *SubmissionServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = auditmem.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, publisher.NewPublisher(s.auditStore), nil, logger)

	userID, err := domain.ParseUserID("7d3e9f7c-92c9-4cf2-8d9e-35b18ab2d001")
	s.Require().NoError(err)
	s.userID = userID

	reviewerID, err := domain.ParseReviewerID("1a2b3c4d-5e6f-4a5b-8c7d-9e8f7a6b5c02")
	s.Require().NoError(err)
	s.reviewerID = reviewerID
}

func (s *SubmissionServiceSuite) validRequest() CreateRequest {
	return CreateRequest{
		UserID:       s.userID,
		DocumentType: "national_id",
		SelfReported: SelfReported{
			FullName:    "Jane Doe",
			IDNumber:    "A1234567",
			DateOfBirth: "1990-01-15",
		},
		DocumentImageRef: "s3://docs/jane-front.jpg",
		SelfieImageRef:   "s3://docs/jane-selfie.jpg",
	}
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestCreate() {
	ctx := context.Background()

	s.Run("valid request opens a pending submission", func() {
		sub, err := s.service.Create(ctx, s.validRequest())
		s.Require().NoError(err)
		s.Equal(StatusPending, sub.Status)
		s.Equal(domain.DocumentTypeNationalID, sub.DocumentType)
		s.False(sub.ID.IsNil())
		s.Nil(sub.ReviewedBy)
	})

	s.Run("create emits an audit event with a hashed subject id", func() {
		events, err := s.auditStore.ListByUser(ctx, s.userID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventSubmissionCreated), events[0].Action)
		s.NotEmpty(events[0].SubjectIDHash)
		s.NotContains(events[0].SubjectIDHash, "A1234567")
	})

	s.Run("second pending submission for same document type is rejected", func() {
		_, err := s.service.Create(ctx, s.validRequest())
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeConflict))
	})

	s.Run("pending submission for a different document type is allowed", func() {
		req := s.validRequest()
		req.DocumentType = "passport"
		req.SelfReported.Nationality = "Dutch"
		_, err := s.service.Create(ctx, req)
		s.NoError(err)
	})

	s.Run("unknown document type is rejected", func() {
		req := s.validRequest()
		req.DocumentType = "library_card"
		_, err := s.service.Create(ctx, req)
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeUnsupportedDocument))
	})

	s.Run("missing required claim is rejected", func() {
		req := s.validRequest()
		req.SelfReported.IDNumber = ""
		_, err := s.service.Create(ctx, req)
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeValidation))
	})
}

// =============================================================================
// Get Tests (Audience Enforcement)
// =============================================================================

func (s *SubmissionServiceSuite) TestGet() {
	ctx := context.Background()

	sub, err := s.service.Create(ctx, s.validRequest())
	s.Require().NoError(err)

	s.Run("owner can read their submission", func() {
		got, err := s.service.Get(ctx, sub.ID, s.userID.String(), "")
		s.NoError(err)
		s.Equal(sub.ID, got.ID)
	})

	s.Run("reviewer can read any submission", func() {
		got, err := s.service.Get(ctx, sub.ID, s.reviewerID.String(), "reviewer")
		s.NoError(err)
		s.Equal(sub.ID, got.ID)
	})

	s.Run("another user is forbidden", func() {
		_, err := s.service.Get(ctx, sub.ID, "b9e1c3a5-7f2d-4e6b-9a8c-1d2e3f4a5b06", "")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeForbidden))
	})

	s.Run("unknown submission is not found", func() {
		_, err := s.service.Get(ctx, domain.NewSubmissionID(), s.userID.String(), "")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeNotFound))
	})
}

// =============================================================================
// Decide Tests (Status State Machine)
// =============================================================================

func (s *SubmissionServiceSuite) TestDecide() {
	ctx := context.Background()

	s.Run("pending submission can be verified", func() {
		sub, err := s.service.Create(ctx, s.validRequest())
		s.Require().NoError(err)

		updated, err := s.service.Decide(ctx, sub.ID, "verified", s.reviewerID, "all fields match")
		s.Require().NoError(err)
		s.Equal(StatusVerified, updated.Status)
		s.Require().NotNil(updated.ReviewedBy)
		s.Equal(s.reviewerID, *updated.ReviewedBy)
		s.NotNil(updated.ReviewedAt)
	})

	s.Run("decided submission cannot be decided again", func() {
		sub, err := s.service.Create(ctx, CreateRequest{
			UserID:       s.userID,
			DocumentType: "tax_id",
			SelfReported: SelfReported{
				FullName:    "Jane Doe",
				IDNumber:    "TAX-99001",
				DateOfBirth: "1990-01-15",
			},
			DocumentImageRef: "s3://docs/jane-tax.jpg",
			SelfieImageRef:   "s3://docs/jane-selfie.jpg",
		})
		s.Require().NoError(err)

		_, err = s.service.Decide(ctx, sub.ID, "rejected", s.reviewerID, "blurred photo")
		s.Require().NoError(err)

		_, err = s.service.Decide(ctx, sub.ID, "verified", s.reviewerID, "")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeInvalidTransition))
	})

	s.Run("pending is not a valid transition target", func() {
		_, err := s.service.Decide(ctx, domain.NewSubmissionID(), "pending", s.reviewerID, "")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeInvalidTransition))
	})

	s.Run("arbitrary status strings are rejected", func() {
		_, err := s.service.Decide(ctx, domain.NewSubmissionID(), "approved", s.reviewerID, "")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeInvalidTransition))
	})

	s.Run("unknown submission is not found", func() {
		_, err := s.service.Decide(ctx, domain.NewSubmissionID(), "verified", s.reviewerID, "")
		s.Require().Error(err)
		s.True(derrors.HasCode(err, derrors.CodeNotFound))
	})
}

// =============================================================================
// History Tests
// =============================================================================

func (s *SubmissionServiceSuite) TestHistory() {
	ctx := context.Background()

	sub, err := s.service.Create(ctx, s.validRequest())
	s.Require().NoError(err)

	s.Run("no decisions yields empty history", func() {
		changes, err := s.service.History(ctx, sub.ID)
		s.NoError(err)
		s.Empty(changes)
	})

	s.Run("decision appends one history row", func() {
		_, err := s.service.Decide(ctx, sub.ID, "rejected", s.reviewerID, "name mismatch")
		s.Require().NoError(err)

		changes, err := s.service.History(ctx, sub.ID)
		s.Require().NoError(err)
		s.Require().Len(changes, 1)
		s.Equal(StatusPending, changes[0].PreviousStatus)
		s.Equal(StatusRejected, changes[0].NewStatus)
		s.Equal("name mismatch", changes[0].Comment)
		s.Equal(s.reviewerID, changes[0].ReviewerID)
	})
}
