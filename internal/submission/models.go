// Package submission owns the KYC submission record and its status
// lifecycle: Pending at creation, moved to Verified or Rejected only by an
// authorized reviewer.
package submission

import (
	"time"

	"veridoc/pkg/domain"
	derrors "veridoc/pkg/domain-errors"
)

// Status is the submission lifecycle state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// IsTerminal reports whether the status ends the automated lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// ValidTarget reports whether the status is an acceptable transition target.
// Only the two terminal states may be set by a reviewer; everything else is
// an invalid transition, including resetting to Pending.
func ValidTarget(target Status) bool {
	return target == StatusVerified || target == StatusRejected
}

// ParseStatus validates a raw transition target.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !ValidTarget(s) {
		return "", derrors.New(derrors.CodeInvalidTransition,
			"status must be one of: verified, rejected")
	}
	return s, nil
}

// SelfReported carries the user's claims about the document. Address lines
// keep the form's structure; sanitizers re-join them to the extraction
// granularity.
type SelfReported struct {
	FullName       string `json:"full_name"`
	IDNumber       string `json:"id_number"`
	Nationality    string `json:"nationality,omitempty"`
	DateOfBirth    string `json:"date_of_birth"`
	IssueDate      string `json:"issue_date,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
	IssuingCountry string `json:"issuing_country,omitempty"`
	Residence      string `json:"residence_country,omitempty"`
	AddressLine1   string `json:"address_line1,omitempty"`
	AddressLine2   string `json:"address_line2,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
}

// FieldMap flattens the claims into the raw map shape the sanitizers accept.
func (sr SelfReported) FieldMap() map[string]string {
	return map[string]string{
		"full_name":         sr.FullName,
		"id_number":         sr.IDNumber,
		"nationality":       sr.Nationality,
		"date_of_birth":     sr.DateOfBirth,
		"issue_date":        sr.IssueDate,
		"expiry_date":       sr.ExpiryDate,
		"issuing_country":   sr.IssuingCountry,
		"residence_country": sr.Residence,
		"address_line1":     sr.AddressLine1,
		"address_line2":     sr.AddressLine2,
		"city":              sr.City,
		"state":             sr.State,
		"postal_code":       sr.PostalCode,
	}
}

// Submission is one KYC attempt: the user's claims plus document and selfie
// image references. Status mutates only through the reviewer path.
type Submission struct {
	ID               domain.SubmissionID
	UserID           domain.UserID
	DocumentType     domain.DocumentType
	SelfReported     SelfReported
	DocumentImageRef string
	SelfieImageRef   string
	Status           Status
	ReviewedBy       *domain.ReviewerID
	ReviewedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// StatusChange is one row of the reviewer-decision history.
type StatusChange struct {
	SubmissionID   domain.SubmissionID
	PreviousStatus Status
	NewStatus      Status
	ReviewerID     domain.ReviewerID
	Comment        string
	ChangedAt      time.Time
}
