// Package domain holds identifier types and closed enumerations shared across
// modules. Typed IDs prevent cross-type assignment at compile time; Parse
// functions enforce the "valid, non-empty, non-nil UUID" invariant at trust
// boundaries.
package domain

import (
	"github.com/google/uuid"

	derrors "veridoc/pkg/domain-errors"
)

type (
	// SubmissionID identifies a KYC submission.
	SubmissionID uuid.UUID
	// UserID identifies the submission owner.
	UserID uuid.UUID
	// ReviewerID identifies the reviewer acting on a submission.
	ReviewerID uuid.UUID
	// ModerationID identifies a moderation record.
	ModerationID uuid.UUID
)

func (id SubmissionID) String() string { return uuid.UUID(id).String() }
func (id SubmissionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ReviewerID) String() string { return uuid.UUID(id).String() }
func (id ReviewerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ModerationID) String() string { return uuid.UUID(id).String() }
func (id ModerationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewSubmissionID returns a fresh random submission identifier.
func NewSubmissionID() SubmissionID { return SubmissionID(uuid.New()) }

// NewModerationID returns a fresh random moderation identifier.
func NewModerationID() ModerationID { return ModerationID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, derrors.New(derrors.CodeInvalidInput, "id must not be empty")
	}
	// uuid.Parse accepts several exotic encodings; cap length to the canonical
	// and braced forms so oversized input is rejected before parsing.
	if len(raw) > 38 {
		return uuid.Nil, derrors.New(derrors.CodeInvalidInput, "id is not a valid uuid")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, derrors.New(derrors.CodeInvalidInput, "id is not a valid uuid")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, derrors.New(derrors.CodeInvalidInput, "id must not be the nil uuid")
	}
	return parsed, nil
}

// ParseSubmissionID validates and converts a raw string into a SubmissionID.
func ParseSubmissionID(raw string) (SubmissionID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return SubmissionID{}, err
	}
	return SubmissionID(parsed), nil
}

// ParseUserID validates and converts a raw string into a UserID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseReviewerID validates and converts a raw string into a ReviewerID.
func ParseReviewerID(raw string) (ReviewerID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ReviewerID{}, err
	}
	return ReviewerID(parsed), nil
}
