package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"veridoc/pkg/domain"
	"veridoc/pkg/platform/sentinel"
)

// InMemoryStore keeps submissions in process memory. Used by unit suites and
// by local development without Postgres.
type InMemoryStore struct {
	mu          sync.RWMutex
	submissions map[domain.SubmissionID]Submission
	history     map[domain.SubmissionID][]StatusChange
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		submissions: make(map[domain.SubmissionID]Submission),
		history:     make(map[domain.SubmissionID][]StatusChange),
	}
}

func (s *InMemoryStore) Create(_ context.Context, sub Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.submissions[sub.ID]; exists {
		return fmt.Errorf("submission %s: %w", sub.ID, sentinel.ErrConflict)
	}
	s.submissions[sub.ID] = sub
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.SubmissionID) (Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[id]
	if !ok {
		return Submission{}, fmt.Errorf("submission %s: %w", id, sentinel.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemoryStore) HasPendingForUser(_ context.Context, userID domain.UserID, docType domain.DocumentType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.DocumentType == docType && sub.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, change StatusChange) (Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[change.SubmissionID]
	if !ok {
		return Submission{}, fmt.Errorf("submission %s: %w", change.SubmissionID, sentinel.ErrNotFound)
	}

	if sub.Status.IsTerminal() {
		return Submission{}, fmt.Errorf("submission %s already %s: %w", change.SubmissionID, sub.Status, sentinel.ErrInvalidState)
	}

	change.PreviousStatus = sub.Status
	if change.ChangedAt.IsZero() {
		change.ChangedAt = time.Now()
	}

	reviewer := change.ReviewerID
	sub.Status = change.NewStatus
	sub.ReviewedBy = &reviewer
	sub.ReviewedAt = &change.ChangedAt
	sub.UpdatedAt = change.ChangedAt

	s.submissions[change.SubmissionID] = sub
	s.history[change.SubmissionID] = append(s.history[change.SubmissionID], change)
	return sub, nil
}

func (s *InMemoryStore) History(_ context.Context, id domain.SubmissionID) ([]StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]StatusChange{}, s.history[id]...), nil
}
