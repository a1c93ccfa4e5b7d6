// Package postgres implements the audit store with the transactional outbox
// pattern. Events are written to the outbox table and published to Kafka by
// the outbox worker; Kafka is the source of truth for audit events.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "veridoc/pkg/domain"
	audit "veridoc/pkg/platform/audit"
	txcontext "veridoc/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event so the consumer side can deserialize without a schema registry.
type outboxPayload struct {
	ID            string `json:"ID"`
	Category      string `json:"Category"`
	Timestamp     string `json:"Timestamp"`
	UserID        string `json:"UserID,omitempty"`
	SubmissionID  string `json:"SubmissionID,omitempty"`
	Action        string `json:"Action"`
	Decision      string `json:"Decision,omitempty"`
	Reason        string `json:"Reason,omitempty"`
	RequestID     string `json:"RequestID,omitempty"`
	ActorID       string `json:"ActorID,omitempty"`
	SubjectIDHash string `json:"SubjectIDHash,omitempty"`
	Device        string `json:"Device,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	category := audit.AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:            eventID.String(),
		Category:      string(category),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Action:        event.Action,
		Decision:      event.Decision,
		Reason:        event.Reason,
		RequestID:     event.RequestID,
		ActorID:       event.ActorID,
		SubjectIDHash: event.SubjectIDHash,
		Device:        event.Device,
	}
	if !event.UserID.IsNil() {
		payload.UserID = event.UserID.String()
	}
	if !event.SubmissionID.IsNil() {
		payload.SubmissionID = event.SubmissionID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.SubmissionID.IsNil() {
		aggregateType = "submission"
		aggregateID = event.SubmissionID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID.String(), aggregateType, aggregateID, event.Action, payloadBytes, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// ListByUser reads events back from the outbox for administrative queries.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT payload FROM outbox
		WHERE payload ->> 'UserID' = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("select outbox events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan outbox payload: %w", err)
		}
		var payload outboxPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload: %w", err)
		}
		event := audit.Event{
			Category:      audit.EventCategory(payload.Category),
			Action:        payload.Action,
			Decision:      payload.Decision,
			Reason:        payload.Reason,
			RequestID:     payload.RequestID,
			ActorID:       payload.ActorID,
			SubjectIDHash: payload.SubjectIDHash,
			Device:        payload.Device,
		}
		if ts, err := time.Parse(time.RFC3339Nano, payload.Timestamp); err == nil {
			event.Timestamp = ts
		}
		if payload.UserID != "" {
			if parsed, err := uuid.Parse(payload.UserID); err == nil {
				event.UserID = id.UserID(parsed)
			}
		}
		if payload.SubmissionID != "" {
			if parsed, err := uuid.Parse(payload.SubmissionID); err == nil {
				event.SubmissionID = id.SubmissionID(parsed)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
