package moderation

import (
	"context"

	"veridoc/pkg/domain"
)

// Store persists moderation records. Create must be atomic with the
// one-record-per-submission check: implementations return
// sentinel.ErrConflict when a record already exists, enforced by a
// uniqueness constraint or equivalent, never by check-then-act.
type Store interface {
	Create(ctx context.Context, record Record) error
	GetBySubmission(ctx context.Context, submissionID domain.SubmissionID) (Record, error)
}

// SignalsStore holds collaborator-supplied face-match and liveliness results
// until the verification pipeline consumes them.
type SignalsStore interface {
	Put(ctx context.Context, signals Signals) error
	Get(ctx context.Context, submissionID domain.SubmissionID) (Signals, error)
}
