package test

import (
	"context"
	"sync"
)

// PromptRepositoryStub keeps prompted order ids in memory.
type PromptRepositoryStub struct {
	LoadErr   error
	AddErr    error
	RemoveErr error

	mu  sync.Mutex
	ids map[string][]string
}

// NewPromptRepositoryStub constructs stub repository seeded with ids per rider.
func NewPromptRepositoryStub(seed map[string][]string) *PromptRepositoryStub {
	s := &PromptRepositoryStub{ids: make(map[string][]string)}
	for rider, ids := range seed {
		s.ids[rider] = append([]string(nil), ids...)
	}
	return s
}

// Load returns the ids stored for rider.
func (s *PromptRepositoryStub) Load(_ context.Context, riderID string) ([]string, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids[riderID]...), nil
}

// Add stores id for rider unless present.
func (s *PromptRepositoryStub) Add(_ context.Context, riderID, orderID string) error {
	if s.AddErr != nil {
		return s.AddErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids == nil {
		s.ids = make(map[string][]string)
	}
	for _, id := range s.ids[riderID] {
		if id == orderID {
			return nil
		}
	}
	s.ids[riderID] = append(s.ids[riderID], orderID)
	return nil
}

// Remove deletes id for rider.
func (s *PromptRepositoryStub) Remove(_ context.Context, riderID, orderID string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.ids[riderID]
	for i, id := range ids {
		if id == orderID {
			s.ids[riderID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// IDs returns the stored ids for rider.
func (s *PromptRepositoryStub) IDs(riderID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids[riderID]...)
}
