// Package moderation owns the moderation record: the aggregate of the
// document comparison verdict with the face-match and liveliness signals.
// Exactly one record may exist per submission.
package moderation

import (
	"time"

	"veridoc/internal/comparison"
	"veridoc/pkg/domain"
)

// FaceMatchResult is the externally computed face comparison between the
// document photo and the selfie.
type FaceMatchResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"match_confidence"`
}

// LivelinessResult is the externally computed liveness check on the selfie.
type LivelinessResult struct {
	Passed  bool              `json:"passed"`
	Details string            `json:"details,omitempty"`
	Results map[string]string `json:"results,omitempty"`
}

// Signals bundles the collaborator-supplied inputs the aggregator consumes.
// They arrive on the signals webhook ahead of the verification run.
type Signals struct {
	SubmissionID domain.SubmissionID
	FaceMatch    FaceMatchResult
	Liveliness   LivelinessResult
	ReceivedAt   time.Time
}

// Record is the moderation verdict for one submission. Created at most once;
// later attempts are rejected, never overwritten.
type Record struct {
	ID            domain.ModerationID
	SubmissionID  domain.SubmissionID
	OCRMatch      bool
	OCRMismatches map[string]comparison.Mismatch
	FaceMatch     FaceMatchResult
	Liveliness    LivelinessResult
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DerivedStatus collapses the record into the single word owners may see.
func (r Record) DerivedStatus() string {
	if r.OCRMatch && r.FaceMatch.Match && r.Liveliness.Passed {
		return "passed"
	}
	return "review_required"
}

// ReviewerView carries full diagnostic detail, reviewer audience only.
type ReviewerView struct {
	ID            string                         `json:"id"`
	SubmissionID  string                         `json:"submission_id"`
	OCRMatch      bool                           `json:"ocr_match"`
	OCRMismatches map[string]comparison.Mismatch `json:"ocr_mismatches,omitempty"`
	FaceMatch     FaceMatchResult                `json:"face_match"`
	Liveliness    LivelinessResult               `json:"liveliness"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}

// OwnerView exposes only the derived status. Field values and mismatch keys
// never cross this boundary.
type OwnerView struct {
	SubmissionID string    `json:"submission_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewReviewerView formats a record for the reviewer audience.
func NewReviewerView(r Record) ReviewerView {
	return ReviewerView{
		ID:            r.ID.String(),
		SubmissionID:  r.SubmissionID.String(),
		OCRMatch:      r.OCRMatch,
		OCRMismatches: r.OCRMismatches,
		FaceMatch:     r.FaceMatch,
		Liveliness:    r.Liveliness,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// NewOwnerView formats a record for the owning user.
func NewOwnerView(r Record) OwnerView {
	return OwnerView{
		SubmissionID: r.SubmissionID.String(),
		Status:       r.DerivedStatus(),
		CreatedAt:    r.CreatedAt,
	}
}
