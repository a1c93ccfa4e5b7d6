// Package worker relays audit events from the outbox table to Kafka.
// Rows are claimed with FOR UPDATE SKIP LOCKED so multiple instances can run
// against the same database without double-publishing.
package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	audit "veridoc/pkg/platform/audit"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
)

// Publisher sends one record to a topic and blocks until acknowledged.
type Publisher interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

type Worker struct {
	db        *sql.DB
	publisher Publisher
	logger    *slog.Logger

	pollInterval time.Duration
	batchSize    int
	topicPrefix  string
}

// Option configures the Worker.
type Option func(*Worker)

// WithPollInterval overrides how often the outbox is polled.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithBatchSize overrides how many rows are claimed per poll.
func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// WithTopicPrefix namespaces the audit topics, e.g. "veridoc" publishes to
// veridoc.audit.compliance, veridoc.audit.security and veridoc.audit.operations.
func WithTopicPrefix(prefix string) Option {
	return func(w *Worker) {
		w.topicPrefix = prefix
	}
}

func NewWorker(db *sql.DB, publisher Publisher, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		db:           db,
		publisher:    publisher,
		logger:       logger,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
		topicPrefix:  "veridoc",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Topics returns every topic the worker may publish to, for broker bootstrap.
func (w *Worker) Topics() []string {
	categories := []audit.EventCategory{
		audit.CategoryCompliance,
		audit.CategorySecurity,
		audit.CategoryOperations,
	}
	topics := make([]string, 0, len(categories))
	for _, c := range categories {
		topics = append(topics, w.topicFor(c))
	}
	return topics
}

func (w *Worker) topicFor(category audit.EventCategory) string {
	return fmt.Sprintf("%s.audit.%s", w.topicPrefix, category)
}

// Run polls the outbox until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.relayBatch(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id      string
	payload []byte
}

// relayBatch claims a batch of unpublished rows, publishes each to the topic
// derived from its category, and marks published rows inside the same
// transaction. A publish failure leaves the row unclaimed for the next poll.
func (w *Worker) relayBatch(ctx context.Context) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, `
		SELECT id, payload FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, w.batchSize)
	if err != nil {
		return fmt.Errorf("claim outbox rows: %w", err)
	}

	var claimed []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.payload); err != nil {
			rows.Close()
			return fmt.Errorf("scan outbox row: %w", err)
		}
		claimed = append(claimed, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate outbox rows: %w", err)
	}
	if len(claimed) == 0 {
		return nil
	}

	var published []string
	for _, row := range claimed {
		var envelope struct {
			Category string `json:"Category"`
		}
		if err := json.Unmarshal(row.payload, &envelope); err != nil {
			w.logger.ErrorContext(ctx, "malformed outbox payload, skipping",
				"outbox_id", row.id,
				"error", err,
			)
			// Mark published so a poison row cannot wedge the relay.
			published = append(published, row.id)
			continue
		}

		topic := w.topicFor(audit.EventCategory(envelope.Category))
		if err := w.publisher.Produce(ctx, topic, []byte(row.id), row.payload); err != nil {
			w.logger.ErrorContext(ctx, "publish outbox row failed",
				"outbox_id", row.id,
				"topic", topic,
				"error", err,
			)
			break
		}
		published = append(published, row.id)
	}

	for _, id := range published {
		if _, err := tx.ExecContext(ctx, `
			UPDATE outbox SET published_at = $1 WHERE id = $2
		`, time.Now(), id); err != nil {
			return fmt.Errorf("mark outbox row published: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit outbox tx: %w", err)
	}

	w.logger.DebugContext(ctx, "relayed outbox batch",
		"claimed", len(claimed),
		"published", len(published),
	)
	return nil
}
