package submission

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/sentinel"
)

// AuditPublisher emits audit events; the service never blocks verification on
// audit I/O beyond what the publisher chooses.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates submission intake and the reviewer decision path. It
// keeps orchestration out of handlers and domain logic thin.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, auditor AuditPublisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// CreateRequest carries everything needed to open a submission.
type CreateRequest struct {
	UserID           domain.UserID
	DocumentType     string
	SelfReported     SelfReported
	DocumentImageRef string
	SelfieImageRef   string
}

// Create validates the request and opens a pending submission. A user may
// hold at most one pending submission per document type.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Submission, error) {
	docType, err := domain.ParseDocumentType(req.DocumentType)
	if err != nil {
		return Submission{}, err
	}
	if err := validateClaims(req); err != nil {
		return Submission{}, err
	}

	pending, err := s.store.HasPendingForUser(ctx, req.UserID, docType)
	if err != nil {
		return Submission{}, derrors.Wrap(err, derrors.CodeInternal, "failed to check pending submissions")
	}
	if pending {
		return Submission{}, derrors.New(derrors.CodeConflict,
			"a pending submission already exists for this document type")
	}

	now := time.Now()
	sub := Submission{
		ID:               domain.NewSubmissionID(),
		UserID:           req.UserID,
		DocumentType:     docType,
		SelfReported:     req.SelfReported,
		DocumentImageRef: req.DocumentImageRef,
		SelfieImageRef:   req.SelfieImageRef,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Submission{}, derrors.Wrap(err, derrors.CodeConflict, "submission already exists")
		}
		return Submission{}, derrors.Wrap(err, derrors.CodeInternal, "failed to create submission")
	}

	s.emitAudit(ctx, audit.Event{
		UserID:        sub.UserID,
		SubmissionID:  sub.ID,
		Action:        string(audit.EventSubmissionCreated),
		SubjectIDHash: audit.HashSubjectID(sub.SelfReported.IDNumber),
	})
	if s.metrics != nil {
		s.metrics.IncrementSubmissionsCreated()
	}

	s.logger.InfoContext(ctx, "submission created",
		"submission_id", sub.ID,
		"document_type", sub.DocumentType,
	)
	return sub, nil
}

// Get returns a submission, visible only to its owner or a reviewer.
func (s *Service) Get(ctx context.Context, id domain.SubmissionID, actorID, role string) (Submission, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Submission{}, derrors.Wrap(err, derrors.CodeNotFound, "submission not found")
		}
		return Submission{}, derrors.Wrap(err, derrors.CodeInternal, "failed to load submission")
	}
	if role != middleware.RoleReviewer && sub.UserID.String() != actorID {
		return Submission{}, derrors.New(derrors.CodeForbidden, "not your submission")
	}
	return sub, nil
}

// Decide moves a pending submission to verified or rejected. Any other
// target, or a submission already decided, is an invalid transition.
func (s *Service) Decide(ctx context.Context, id domain.SubmissionID, target string, reviewerID domain.ReviewerID, comment string) (Submission, error) {
	status, err := ParseStatus(target)
	if err != nil {
		return Submission{}, err
	}

	updated, err := s.store.UpdateStatus(ctx, StatusChange{
		SubmissionID: id,
		NewStatus:    status,
		ReviewerID:   reviewerID,
		Comment:      comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return Submission{}, derrors.Wrap(err, derrors.CodeNotFound, "submission not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return Submission{}, derrors.Wrap(err, derrors.CodeInvalidTransition,
				"submission has already been decided")
		default:
			return Submission{}, derrors.Wrap(err, derrors.CodeInternal, "failed to update status")
		}
	}

	action := audit.EventSubmissionVerified
	if status == StatusRejected {
		action = audit.EventSubmissionRejected
	}
	s.emitAudit(ctx, audit.Event{
		UserID:       updated.UserID,
		SubmissionID: updated.ID,
		Action:       string(action),
		Decision:     string(status),
		Reason:       comment,
		ActorID:      reviewerID.String(),
	})

	s.logger.InfoContext(ctx, "submission decided",
		"submission_id", updated.ID,
		"status", updated.Status,
		"reviewer_id", reviewerID,
	)
	return updated, nil
}

// History lists the reviewer decisions for a submission, oldest first.
func (s *Service) History(ctx context.Context, id domain.SubmissionID) ([]StatusChange, error) {
	changes, err := s.store.History(ctx, id)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "failed to load status history")
	}
	return changes, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	event.RequestID = middleware.GetRequestID(ctx)
	event.Device = middleware.GetDevice(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func validateClaims(req CreateRequest) error {
	missing := func(field, name string) error {
		if strings.TrimSpace(field) == "" {
			return derrors.New(derrors.CodeValidation, name+" is required")
		}
		return nil
	}
	if err := missing(req.SelfReported.FullName, "full_name"); err != nil {
		return err
	}
	if err := missing(req.SelfReported.IDNumber, "id_number"); err != nil {
		return err
	}
	if err := missing(req.SelfReported.DateOfBirth, "date_of_birth"); err != nil {
		return err
	}
	if err := missing(req.DocumentImageRef, "document_image_ref"); err != nil {
		return err
	}
	if err := missing(req.SelfieImageRef, "selfie_image_ref"); err != nil {
		return err
	}
	return nil
}
