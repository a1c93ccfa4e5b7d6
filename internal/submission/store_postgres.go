package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"veridoc/pkg/domain"
	"veridoc/pkg/platform/sentinel"
	txcontext "veridoc/pkg/platform/tx"
)

// PostgresStore persists submissions in PostgreSQL. Self-reported fields are
// stored as a JSON document; the status update and its history row share one
// transaction.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresStoreOption configures a PostgresStore.
type PostgresStoreOption func(*PostgresStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) PostgresStoreOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgresStore constructs a PostgreSQL-backed submission store.
func NewPostgresStore(db *sql.DB, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, sub Submission) error {
	selfReported, err := json.Marshal(sub.SelfReported)
	if err != nil {
		return fmt.Errorf("marshal self-reported fields: %w", err)
	}

	query := `
		INSERT INTO submissions
			(id, user_id, document_type, self_reported, document_image_ref, selfie_image_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		sub.ID.String(), sub.UserID.String(), string(sub.DocumentType), selfReported,
		sub.DocumentImageRef, sub.SelfieImageRef, string(sub.Status), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("submission %s: %w", sub.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.SubmissionID) (Submission, error) {
	query := `
		SELECT id, user_id, document_type, self_reported, document_image_ref,
		       selfie_image_ref, status, reviewed_by, reviewed_at, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, id.String())
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return Submission{}, fmt.Errorf("submission %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return Submission{}, fmt.Errorf("select submission: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) HasPendingForUser(ctx context.Context, userID domain.UserID, docType domain.DocumentType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM submissions
			WHERE user_id = $1 AND document_type = $2 AND status = $3
		)
	`
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx, query, userID.String(), string(docType), string(StatusPending)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending submission: %w", err)
	}
	return exists, nil
}

// UpdateStatus stamps the reviewer decision and appends the history row in a
// single transaction, so the audit trail can never drift from the record.
func (s *PostgresStore) UpdateStatus(ctx context.Context, change StatusChange) (Submission, error) {
	if change.ChangedAt.IsZero() {
		change.ChangedAt = s.clock()
	}

	var updated Submission
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		current, err := s.Get(ctx, change.SubmissionID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return fmt.Errorf("submission %s already %s: %w", change.SubmissionID, current.Status, sentinel.ErrInvalidState)
		}
		change.PreviousStatus = current.Status

		query := `
			UPDATE submissions
			SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4
			WHERE id = $1 AND status = $5
			RETURNING id, user_id, document_type, self_reported, document_image_ref,
			          selfie_image_ref, status, reviewed_by, reviewed_at, created_at, updated_at
		`
		row := s.execer(ctx).QueryRowContext(ctx, query,
			change.SubmissionID.String(), string(change.NewStatus),
			change.ReviewerID.String(), change.ChangedAt, string(change.PreviousStatus),
		)
		updated, err = scanSubmission(row)
		if err == sql.ErrNoRows {
			// Lost a race with a concurrent decision.
			return fmt.Errorf("submission %s: %w", change.SubmissionID, sentinel.ErrInvalidState)
		}
		if err != nil {
			return fmt.Errorf("update submission status: %w", err)
		}

		history := `
			INSERT INTO submission_status_history
				(submission_id, previous_status, new_status, reviewer_id, comment, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err = s.execer(ctx).ExecContext(ctx, history,
			change.SubmissionID.String(), string(change.PreviousStatus), string(change.NewStatus),
			change.ReviewerID.String(), change.Comment, change.ChangedAt,
		)
		if err != nil {
			return fmt.Errorf("append status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return Submission{}, err
	}
	return updated, nil
}

func (s *PostgresStore) History(ctx context.Context, id domain.SubmissionID) ([]StatusChange, error) {
	query := `
		SELECT submission_id, previous_status, new_status, reviewer_id, comment, changed_at
		FROM submission_status_history
		WHERE submission_id = $1
		ORDER BY changed_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, id.String())
	if err != nil {
		return nil, fmt.Errorf("select status history: %w", err)
	}
	defer rows.Close()

	var changes []StatusChange
	for rows.Next() {
		var (
			change                StatusChange
			subID, reviewerID     string
			prevStatus, newStatus string
		)
		if err := rows.Scan(&subID, &prevStatus, &newStatus, &reviewerID, &change.Comment, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		parsedSub, err := uuid.Parse(subID)
		if err != nil {
			return nil, fmt.Errorf("parse history submission id: %w", err)
		}
		parsedReviewer, err := uuid.Parse(reviewerID)
		if err != nil {
			return nil, fmt.Errorf("parse history reviewer id: %w", err)
		}
		change.SubmissionID = domain.SubmissionID(parsedSub)
		change.ReviewerID = domain.ReviewerID(parsedReviewer)
		change.PreviousStatus = Status(prevStatus)
		change.NewStatus = Status(newStatus)
		changes = append(changes, change)
	}
	return changes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var (
		sub             Submission
		id, userID      string
		docType, status string
		selfReported    []byte
		reviewedBy      sql.NullString
		reviewedAt      sql.NullTime
	)
	err := row.Scan(&id, &userID, &docType, &selfReported, &sub.DocumentImageRef,
		&sub.SelfieImageRef, &status, &reviewedBy, &reviewedAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return Submission{}, fmt.Errorf("parse submission id: %w", err)
	}
	parsedUser, err := uuid.Parse(userID)
	if err != nil {
		return Submission{}, fmt.Errorf("parse user id: %w", err)
	}
	sub.ID = domain.SubmissionID(parsedID)
	sub.UserID = domain.UserID(parsedUser)
	sub.DocumentType = domain.DocumentType(docType)
	sub.Status = Status(status)

	if err := json.Unmarshal(selfReported, &sub.SelfReported); err != nil {
		return Submission{}, fmt.Errorf("unmarshal self-reported fields: %w", err)
	}
	if reviewedBy.Valid {
		parsedReviewer, err := uuid.Parse(reviewedBy.String)
		if err != nil {
			return Submission{}, fmt.Errorf("parse reviewer id: %w", err)
		}
		rid := domain.ReviewerID(parsedReviewer)
		sub.ReviewedBy = &rid
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		sub.ReviewedAt = &t
	}
	return sub, nil
}
