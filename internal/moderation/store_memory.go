package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"veridoc/pkg/domain"
	"veridoc/pkg/platform/sentinel"
)

// InMemoryStore keeps moderation records in process memory. The existence
// check and the insert happen under one mutex, so the duplicate guard holds
// under concurrent creates.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.SubmissionID]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[domain.SubmissionID]Record),
	}
}

func (s *InMemoryStore) Create(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.SubmissionID]; exists {
		return fmt.Errorf("moderation for submission %s: %w", record.SubmissionID, sentinel.ErrConflict)
	}
	s.records[record.SubmissionID] = record
	return nil
}

func (s *InMemoryStore) GetBySubmission(_ context.Context, submissionID domain.SubmissionID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[submissionID]
	if !ok {
		return Record{}, fmt.Errorf("moderation for submission %s: %w", submissionID, sentinel.ErrNotFound)
	}
	return record, nil
}

// Count returns the number of stored records. Test helper.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// InMemorySignalsStore holds signals in process memory.
type InMemorySignalsStore struct {
	mu      sync.RWMutex
	signals map[domain.SubmissionID]Signals
}

func NewInMemorySignalsStore() *InMemorySignalsStore {
	return &InMemorySignalsStore{
		signals: make(map[domain.SubmissionID]Signals),
	}
}

// Put stores or replaces the signals for a submission. Collaborators may
// resend corrected results until the moderation record is created.
func (s *InMemorySignalsStore) Put(_ context.Context, signals Signals) error {
	if signals.ReceivedAt.IsZero() {
		signals.ReceivedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[signals.SubmissionID] = signals
	return nil
}

func (s *InMemorySignalsStore) Get(_ context.Context, submissionID domain.SubmissionID) (Signals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	signals, ok := s.signals[submissionID]
	if !ok {
		return Signals{}, fmt.Errorf("signals for submission %s: %w", submissionID, sentinel.ErrNotFound)
	}
	return signals, nil
}
