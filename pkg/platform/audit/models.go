// Package audit captures key verification actions for compliance and
// operational visibility. Events are transport-agnostic; stores and sinks fan
// them out.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	id "veridoc/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// submission lifecycle, moderation verdicts, reviewer decisions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// duplicate-moderation rejections, webhook authentication failures.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging with shorter
	// retention: extraction failures, signal arrivals.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture a key action.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	UserID       id.UserID
	SubmissionID id.SubmissionID
	Action       string
	Decision     string
	Reason       string
	RequestID    string
	// ActorID tracks who performed the action when different from UserID,
	// e.g. the reviewer deciding a submission.
	ActorID string
	// SubjectIDHash is a SHA-256 hash of the document identifier being
	// evaluated. Compliance traceability without storing raw PII.
	SubjectIDHash string
	// Device is the parsed user-agent family of the submitting client.
	Device string
}

// AuditEvent names every action the engine emits.
type AuditEvent string

const (
	EventSubmissionCreated           AuditEvent = "submission_created"
	EventSubmissionVerified          AuditEvent = "submission_verified"
	EventSubmissionRejected          AuditEvent = "submission_rejected"
	EventModerationCreated           AuditEvent = "moderation_created"
	EventModerationDuplicateRejected AuditEvent = "moderation_duplicate_rejected"
	EventExtractionFailed            AuditEvent = "extraction_failed"
	EventSignalsReceived             AuditEvent = "signals_received"
	EventSignalsAuthFailed           AuditEvent = "signals_auth_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventSubmissionCreated:           CategoryCompliance,
	EventSubmissionVerified:          CategoryCompliance,
	EventSubmissionRejected:          CategoryCompliance,
	EventModerationCreated:           CategoryCompliance,
	EventModerationDuplicateRejected: CategorySecurity,
	EventSignalsAuthFailed:           CategorySecurity,
	EventExtractionFailed:            CategoryOperations,
	EventSignalsReceived:             CategoryOperations,
}

// Category returns the event's category, defaulting to operations for
// unknown actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// HashSubjectID hashes a document identifier for PII-free traceability.
func HashSubjectID(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
