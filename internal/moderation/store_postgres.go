package moderation

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

// PostgresStore persists moderation records. The moderations table carries
// UNIQUE (submission_id); the database, not application code, closes the
// concurrent create race.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
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

func (s *PostgresStore) Create(ctx context.Context, record Record) error {
	mismatches, err := json.Marshal(record.OCRMismatches)
	if err != nil {
		return fmt.Errorf("marshal mismatches: %w", err)
	}
	livelinessResults, err := json.Marshal(record.Liveliness.Results)
	if err != nil {
		return fmt.Errorf("marshal liveliness results: %w", err)
	}

	query := `
		INSERT INTO moderations
			(id, submission_id, ocr_match, ocr_mismatches,
			 face_match, face_match_confidence,
			 liveliness_passed, liveliness_details, liveliness_results,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		record.ID.String(), record.SubmissionID.String(),
		record.OCRMatch, mismatches,
		record.FaceMatch.Match, record.FaceMatch.Confidence,
		record.Liveliness.Passed, record.Liveliness.Details, livelinessResults,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("moderation for submission %s: %w", record.SubmissionID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert moderation: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBySubmission(ctx context.Context, submissionID domain.SubmissionID) (Record, error) {
	query := `
		SELECT id, submission_id, ocr_match, ocr_mismatches,
		       face_match, face_match_confidence,
		       liveliness_passed, liveliness_details, liveliness_results,
		       created_at, updated_at
		FROM moderations
		WHERE submission_id = $1
	`
	row := s.execer(ctx).QueryRowContext(ctx, query, submissionID.String())

	var (
		record            Record
		idRaw, subRaw     string
		mismatchesRaw     []byte
		livelinessRaw     []byte
		livelinessDetails sql.NullString
	)
	err := row.Scan(
		&idRaw, &subRaw, &record.OCRMatch, &mismatchesRaw,
		&record.FaceMatch.Match, &record.FaceMatch.Confidence,
		&record.Liveliness.Passed, &livelinessDetails, &livelinessRaw,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("moderation for submission %s: %w", submissionID, sentinel.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("select moderation: %w", err)
	}

	parsedID, err := uuid.Parse(idRaw)
	if err != nil {
		return Record{}, fmt.Errorf("parse moderation id: %w", err)
	}
	parsedSub, err := uuid.Parse(subRaw)
	if err != nil {
		return Record{}, fmt.Errorf("parse moderation submission id: %w", err)
	}
	record.ID = domain.ModerationID(parsedID)
	record.SubmissionID = domain.SubmissionID(parsedSub)
	record.Liveliness.Details = livelinessDetails.String

	if len(mismatchesRaw) > 0 {
		if err := json.Unmarshal(mismatchesRaw, &record.OCRMismatches); err != nil {
			return Record{}, fmt.Errorf("unmarshal mismatches: %w", err)
		}
	}
	if len(livelinessRaw) > 0 {
		if err := json.Unmarshal(livelinessRaw, &record.Liveliness.Results); err != nil {
			return Record{}, fmt.Errorf("unmarshal liveliness results: %w", err)
		}
	}
	return record, nil
}

// PostgresSignalsStore persists collaborator signals; the latest write for a
// submission wins until the pipeline consumes them.
type PostgresSignalsStore struct {
	db *sql.DB
}

func NewPostgresSignalsStore(db *sql.DB) *PostgresSignalsStore {
	return &PostgresSignalsStore{db: db}
}

func (s *PostgresSignalsStore) Put(ctx context.Context, signals Signals) error {
	if signals.ReceivedAt.IsZero() {
		signals.ReceivedAt = time.Now()
	}
	livelinessResults, err := json.Marshal(signals.Liveliness.Results)
	if err != nil {
		return fmt.Errorf("marshal liveliness results: %w", err)
	}

	query := `
		INSERT INTO moderation_signals
			(submission_id, face_match, face_match_confidence,
			 liveliness_passed, liveliness_details, liveliness_results, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (submission_id) DO UPDATE SET
			face_match = EXCLUDED.face_match,
			face_match_confidence = EXCLUDED.face_match_confidence,
			liveliness_passed = EXCLUDED.liveliness_passed,
			liveliness_details = EXCLUDED.liveliness_details,
			liveliness_results = EXCLUDED.liveliness_results,
			received_at = EXCLUDED.received_at
	`
	_, err = s.db.ExecContext(ctx, query,
		signals.SubmissionID.String(),
		signals.FaceMatch.Match, signals.FaceMatch.Confidence,
		signals.Liveliness.Passed, signals.Liveliness.Details, livelinessResults,
		signals.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert signals: %w", err)
	}
	return nil
}

func (s *PostgresSignalsStore) Get(ctx context.Context, submissionID domain.SubmissionID) (Signals, error) {
	query := `
		SELECT submission_id, face_match, face_match_confidence,
		       liveliness_passed, liveliness_details, liveliness_results, received_at
		FROM moderation_signals
		WHERE submission_id = $1
	`
	row := s.db.QueryRowContext(ctx, query, submissionID.String())

	var (
		signals           Signals
		subRaw            string
		livelinessRaw     []byte
		livelinessDetails sql.NullString
	)
	err := row.Scan(
		&subRaw, &signals.FaceMatch.Match, &signals.FaceMatch.Confidence,
		&signals.Liveliness.Passed, &livelinessDetails, &livelinessRaw,
		&signals.ReceivedAt,
	)
	if err == sql.ErrNoRows {
		return Signals{}, fmt.Errorf("signals for submission %s: %w", submissionID, sentinel.ErrNotFound)
	}
	if err != nil {
		return Signals{}, fmt.Errorf("select signals: %w", err)
	}

	parsedSub, err := uuid.Parse(subRaw)
	if err != nil {
		return Signals{}, fmt.Errorf("parse signals submission id: %w", err)
	}
	signals.SubmissionID = domain.SubmissionID(parsedSub)
	signals.Liveliness.Details = livelinessDetails.String
	if len(livelinessRaw) > 0 {
		if err := json.Unmarshal(livelinessRaw, &signals.Liveliness.Results); err != nil {
			return Signals{}, fmt.Errorf("unmarshal liveliness results: %w", err)
		}
	}
	return signals, nil
}
