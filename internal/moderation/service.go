package moderation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"veridoc/internal/comparison"
	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	"veridoc/internal/submission"
	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/sentinel"
)

// SubmissionReader is the slice of the submission store the aggregator needs:
// existence and ownership checks.
type SubmissionReader interface {
	Get(ctx context.Context, id domain.SubmissionID) (submission.Submission, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the moderation aggregator. It merges the comparison verdict with
// the collaborator signals into exactly one record per submission and
// enforces the audience split on reads.
type Service struct {
	store       Store
	signals     SignalsStore
	submissions SubmissionReader
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewService(
	store Store,
	signals SignalsStore,
	submissions SubmissionReader,
	auditor AuditPublisher,
	m *metrics.Metrics,
	logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		signals:     signals,
		submissions: submissions,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
	}
}

// Create aggregates one moderation record. A second attempt for the same
// submission fails with DuplicateModeration and leaves the original record
// untouched.
func (s *Service) Create(ctx context.Context, submissionID domain.SubmissionID, verdict comparison.Result, signals Signals) (Record, error) {
	now := time.Now()
	record := Record{
		ID:            domain.NewModerationID(),
		SubmissionID:  submissionID,
		OCRMatch:      verdict.IsMatch,
		OCRMismatches: verdict.Mismatches,
		FaceMatch:     signals.FaceMatch,
		Liveliness:    signals.Liveliness,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.IncrementDuplicateRejections()
			}
			s.emitAudit(ctx, audit.Event{
				SubmissionID: submissionID,
				Action:       string(audit.EventModerationDuplicateRejected),
			})
			return Record{}, derrors.Wrap(err, derrors.CodeDuplicateModeration,
				"submission has already been moderated")
		}
		return Record{}, derrors.Wrap(err, derrors.CodeInternal, "failed to create moderation")
	}

	if s.metrics != nil {
		s.metrics.IncrementModerationsCreated(record.DerivedStatus())
	}
	s.emitAudit(ctx, audit.Event{
		SubmissionID: submissionID,
		Action:       string(audit.EventModerationCreated),
		Decision:     record.DerivedStatus(),
	})

	s.logger.InfoContext(ctx, "moderation created",
		"submission_id", submissionID,
		"ocr_match", record.OCRMatch,
		"face_match", record.FaceMatch.Match,
		"liveliness_passed", record.Liveliness.Passed,
	)
	return record, nil
}

// RecordSignals stores the collaborator face-match and liveliness results for
// a submission. Resends replace earlier values until moderation runs.
func (s *Service) RecordSignals(ctx context.Context, submissionID domain.SubmissionID, face FaceMatchResult, liveliness LivelinessResult) error {
	sub, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return derrors.Wrap(err, derrors.CodeNotFound, "submission not found")
		}
		return derrors.Wrap(err, derrors.CodeInternal, "failed to load submission")
	}

	if err := s.signals.Put(ctx, Signals{
		SubmissionID: submissionID,
		FaceMatch:    face,
		Liveliness:   liveliness,
	}); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to store signals")
	}

	s.emitAudit(ctx, audit.Event{
		UserID:       sub.UserID,
		SubmissionID: submissionID,
		Action:       string(audit.EventSignalsReceived),
	})
	return nil
}

// SignalsFor returns the held signals for a submission, or NotFound when the
// collaborators have not reported yet.
func (s *Service) SignalsFor(ctx context.Context, submissionID domain.SubmissionID) (Signals, error) {
	signals, err := s.signals.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Signals{}, derrors.Wrap(err, derrors.CodeNotFound,
				"face-match and liveliness results not yet received")
		}
		return Signals{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load signals")
	}
	return signals, nil
}

// Exists reports whether a submission already has a moderation record.
func (s *Service) Exists(ctx context.Context, submissionID domain.SubmissionID) (bool, error) {
	_, err := s.store.GetBySubmission(ctx, submissionID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return false, derrors.Wrap(err, derrors.CodeInternal, "failed to check moderation")
}

// ForReviewer returns full diagnostic detail. Callers must have enforced the
// reviewer role already.
func (s *Service) ForReviewer(ctx context.Context, submissionID domain.SubmissionID) (ReviewerView, error) {
	record, err := s.get(ctx, submissionID)
	if err != nil {
		return ReviewerView{}, err
	}
	return NewReviewerView(record), nil
}

// ForOwner returns the coarse owner view. Only the submission owner may read
// it; raw comparison internals never cross this boundary.
func (s *Service) ForOwner(ctx context.Context, submissionID domain.SubmissionID, actorID string) (OwnerView, error) {
	sub, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return OwnerView{}, derrors.Wrap(err, derrors.CodeNotFound, "submission not found")
		}
		return OwnerView{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load submission")
	}
	if sub.UserID.String() != actorID {
		return OwnerView{}, derrors.New(derrors.CodeForbidden, "not your submission")
	}

	record, err := s.get(ctx, submissionID)
	if err != nil {
		return OwnerView{}, err
	}
	return NewOwnerView(record), nil
}

func (s *Service) get(ctx context.Context, submissionID domain.SubmissionID) (Record, error) {
	record, err := s.store.GetBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, derrors.Wrap(err, derrors.CodeNotFound, "submission has not been moderated")
		}
		return Record{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load moderation")
	}
	return record, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
