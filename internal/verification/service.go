// Package verification runs the synchronous verification pipeline for one
// submission: duplicate guard, extraction, comparison, aggregation.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"veridoc/internal/comparison"
	"veridoc/internal/extraction"
	"veridoc/internal/moderation"
	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	"veridoc/internal/submission"
	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/sentinel"
)

var tracer = otel.Tracer("veridoc/verification")

const lockTTL = 2 * time.Minute

// Extractor fetches the structured document fields for an image reference.
type Extractor interface {
	Extract(ctx context.Context, imageRef string) (map[string]string, error)
}

// Comparer evaluates agreement between extracted and submitted fields.
type Comparer interface {
	CompareDocument(ctx context.Context, docType domain.DocumentType, ocrData, submittedData map[string]string) (comparison.Result, error)
}

// Moderations is the slice of the moderation aggregator the pipeline drives.
type Moderations interface {
	Exists(ctx context.Context, submissionID domain.SubmissionID) (bool, error)
	SignalsFor(ctx context.Context, submissionID domain.SubmissionID) (moderation.Signals, error)
	Create(ctx context.Context, submissionID domain.SubmissionID, verdict comparison.Result, signals moderation.Signals) (moderation.Record, error)
}

// SubmissionReader loads the submission under verification.
type SubmissionReader interface {
	Get(ctx context.Context, id domain.SubmissionID) (submission.Submission, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the verification pipeline. One call chain per request, no
// internal parallelism; the extraction call is the only blocking network hop
// and is bounded by the client's timeout.
type Service struct {
	submissions SubmissionReader
	extractor   Extractor
	engine      Comparer
	moderations Moderations
	locker      Locker
	auditor     AuditPublisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewService(
	submissions SubmissionReader,
	extractor Extractor,
	engine Comparer,
	moderations Moderations,
	locker Locker,
	auditor AuditPublisher,
	m *metrics.Metrics,
	logger *slog.Logger) *Service {
	return &Service{
		submissions: submissions,
		extractor:   extractor,
		engine:      engine,
		moderations: moderations,
		locker:      locker,
		auditor:     auditor,
		metrics:     m,
		logger:      logger,
	}
}

// Verify runs the pipeline for one submission and returns the created
// moderation record. At most one run can succeed per submission: the lock
// serializes in-flight attempts and the store's uniqueness constraint closes
// the race structurally.
func (s *Service) Verify(ctx context.Context, submissionID domain.SubmissionID) (moderation.Record, error) {
	ctx, span := tracer.Start(ctx, "verification.Verify",
		trace.WithAttributes(attribute.String("submission_id", submissionID.String())))
	defer span.End()

	sub, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return moderation.Record{}, derrors.Wrap(err, derrors.CodeNotFound, "submission not found")
		}
		return moderation.Record{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load submission")
	}
	span.SetAttributes(attribute.String("document_type", string(sub.DocumentType)))

	// Decided submissions are never re-moderated automatically; only the
	// reviewer path may touch them.
	if sub.Status.IsTerminal() {
		return moderation.Record{}, derrors.New(derrors.CodeDuplicateModeration,
			"submission has already been decided")
	}

	exists, err := s.moderations.Exists(ctx, submissionID)
	if err != nil {
		return moderation.Record{}, err
	}
	if exists {
		return moderation.Record{}, derrors.New(derrors.CodeDuplicateModeration,
			"submission has already been moderated")
	}

	lockKey := "moderation:" + submissionID.String()
	acquired, err := s.locker.Acquire(ctx, lockKey, lockTTL)
	if err != nil {
		return moderation.Record{}, derrors.Wrap(err, derrors.CodeInternal, "failed to acquire moderation lock")
	}
	if !acquired {
		return moderation.Record{}, derrors.New(derrors.CodeDuplicateModeration,
			"moderation already in progress for this submission")
	}
	defer func() {
		if err := s.locker.Release(ctx, lockKey); err != nil {
			s.logger.WarnContext(ctx, "failed to release moderation lock",
				"key", lockKey,
				"error", err,
			)
		}
	}()

	signals, err := s.moderations.SignalsFor(ctx, submissionID)
	if err != nil {
		return moderation.Record{}, err
	}

	ocrData, err := s.extract(ctx, sub)
	if err != nil {
		return moderation.Record{}, err
	}

	start := time.Now()
	verdict, err := s.engine.CompareDocument(ctx, sub.DocumentType, ocrData, sub.SelfReported.FieldMap())
	if err != nil {
		return moderation.Record{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveComparisonDuration(time.Since(start).Seconds())
		if n := len(verdict.Mismatches); n > 0 {
			s.metrics.IncrementFieldMismatches(string(sub.DocumentType), n)
		}
	}
	span.SetAttributes(attribute.Bool("ocr_match", verdict.IsMatch))

	record, err := s.moderations.Create(ctx, submissionID, verdict, signals)
	if err != nil {
		return moderation.Record{}, err
	}

	s.logger.InfoContext(ctx, "verification pipeline completed",
		"submission_id", submissionID,
		"ocr_match", verdict.IsMatch,
		"derived_status", record.DerivedStatus(),
	)
	return record, nil
}

func (s *Service) extract(ctx context.Context, sub submission.Submission) (map[string]string, error) {
	ctx, span := tracer.Start(ctx, "verification.extract")
	defer span.End()

	ocrData, err := s.extractor.Extract(ctx, sub.DocumentImageRef)
	if err != nil {
		cause := extraction.CauseOf(err)
		if s.metrics != nil {
			s.metrics.IncrementExtractionFailures(string(cause))
		}
		if auditErr := s.auditor.Emit(ctx, audit.Event{
			UserID:       sub.UserID,
			SubmissionID: sub.ID,
			Action:       string(audit.EventExtractionFailed),
			Reason:       string(cause),
			RequestID:    middleware.GetRequestID(ctx),
		}); auditErr != nil {
			s.logger.ErrorContext(ctx, "failed to emit audit event", "error", auditErr)
		}
		s.logger.WarnContext(ctx, "document extraction failed",
			"submission_id", sub.ID,
			"cause", cause,
			"error", err,
		)
		// Keep the typed failure in the chain so callers can branch on cause.
		return nil, derrors.Wrap(err, derrors.CodeExtractionFailed, "document extraction failed")
	}
	return ocrData, nil
}
