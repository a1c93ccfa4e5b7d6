//go:build integration

package moderation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veridoc/internal/comparison"
	"veridoc/internal/moderation"
	"veridoc/internal/submission"
	"veridoc/pkg/domain"
	"veridoc/pkg/platform/sentinel"
	"veridoc/pkg/testutil/containers"
)

type ModerationPostgresSuite struct {
	suite.Suite
	postgres    *containers.PostgresContainer
	store       *moderation.PostgresStore
	signals     *moderation.PostgresSignalsStore
	submissions *submission.PostgresStore
}

func TestModerationPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ModerationPostgresSuite))
}

func (s *ModerationPostgresSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = moderation.NewPostgresStore(s.postgres.DB)
	s.signals = moderation.NewPostgresSignalsStore(s.postgres.DB)
	s.submissions = submission.NewPostgresStore(s.postgres.DB)
}

func (s *ModerationPostgresSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "moderation_signals", "moderations", "submission_status_history", "submissions")
	s.Require().NoError(err)
}

// seedSubmission satisfies the moderations foreign key.
func (s *ModerationPostgresSuite) seedSubmission() domain.SubmissionID {
	now := time.Now().UTC().Truncate(time.Microsecond)
	sub := submission.Submission{
		ID:           domain.NewSubmissionID(),
		UserID:       domain.UserID(uuid.New()),
		DocumentType: domain.DocumentTypePassport,
		SelfReported: submission.SelfReported{
			FullName:    "Jane Doe",
			IDNumber:    "A-1234567",
			DateOfBirth: "1990-01-15",
		},
		DocumentImageRef: "s3://docs/front.jpg",
		SelfieImageRef:   "s3://docs/selfie.jpg",
		Status:           submission.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	s.Require().NoError(s.submissions.Create(context.Background(), sub))
	return sub.ID
}

func newTestRecord(submissionID domain.SubmissionID) moderation.Record {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return moderation.Record{
		ID:           domain.NewModerationID(),
		SubmissionID: submissionID,
		OCRMatch:     false,
		OCRMismatches: map[string]comparison.Mismatch{
			"id_number": {OCRValue: "B7654321", SubmittedValue: "A-1234567", Reason: "values differ"},
		},
		FaceMatch:  moderation.FaceMatchResult{Match: true, Confidence: 0.93},
		Liveliness: moderation.LivelinessResult{Passed: true, Results: map[string]string{"blink": "ok"}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *ModerationPostgresSuite) TestCreateAndGet() {
	ctx := context.Background()
	subID := s.seedSubmission()
	record := newTestRecord(subID)

	s.Require().NoError(s.store.Create(ctx, record))

	got, err := s.store.GetBySubmission(ctx, subID)
	s.Require().NoError(err)
	s.Equal(record.ID, got.ID)
	s.Equal(record.OCRMismatches, got.OCRMismatches)
	s.Equal(record.FaceMatch, got.FaceMatch)
	s.Equal(record.Liveliness, got.Liveliness)
}

func (s *ModerationPostgresSuite) TestCreate_DuplicateRejected() {
	ctx := context.Background()
	subID := s.seedSubmission()

	s.Require().NoError(s.store.Create(ctx, newTestRecord(subID)))

	err := s.store.Create(ctx, newTestRecord(subID))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

// The UNIQUE constraint is the guard: under concurrent creates for one
// submission exactly one row may land, no matter how the writes interleave.
func (s *ModerationPostgresSuite) TestCreate_ConcurrentDuplicates() {
	ctx := context.Background()
	subID := s.seedSubmission()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newTestRecord(subID))
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(attempts-1), conflicts.Load())

	_, err := s.store.GetBySubmission(ctx, subID)
	s.Require().NoError(err)
}

func (s *ModerationPostgresSuite) TestSignals_UpsertReplaces() {
	ctx := context.Background()
	subID := s.seedSubmission()

	first := moderation.Signals{
		SubmissionID: subID,
		FaceMatch:    moderation.FaceMatchResult{Match: false, Confidence: 0.40},
		Liveliness:   moderation.LivelinessResult{Passed: false, Details: "camera obscured"},
	}
	s.Require().NoError(s.signals.Put(ctx, first))

	second := moderation.Signals{
		SubmissionID: subID,
		FaceMatch:    moderation.FaceMatchResult{Match: true, Confidence: 0.95},
		Liveliness:   moderation.LivelinessResult{Passed: true},
	}
	s.Require().NoError(s.signals.Put(ctx, second))

	got, err := s.signals.Get(ctx, subID)
	s.Require().NoError(err)
	s.Equal(second.FaceMatch, got.FaceMatch)
	s.True(got.Liveliness.Passed)
	s.Empty(got.Liveliness.Details)
}

func (s *ModerationPostgresSuite) TestSignals_Missing() {
	ctx := context.Background()

	_, err := s.signals.Get(ctx, domain.NewSubmissionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
