package submission

import (
	"context"

	"veridoc/pkg/domain"
)

// Store persists submissions. Implementations return sentinel errors for
// infrastructure facts; the service translates them into domain errors.
type Store interface {
	Create(ctx context.Context, sub Submission) error
	Get(ctx context.Context, id domain.SubmissionID) (Submission, error)
	// HasPendingForUser reports whether the user already has a pending
	// submission for the given document type.
	HasPendingForUser(ctx context.Context, userID domain.UserID, docType domain.DocumentType) (bool, error)
	// UpdateStatus moves the submission to the new status and stamps the
	// reviewer; implementations append the history row atomically with the
	// update.
	UpdateStatus(ctx context.Context, change StatusChange) (Submission, error)
	// History lists status changes for a submission, oldest first.
	History(ctx context.Context, id domain.SubmissionID) ([]StatusChange, error)
}
