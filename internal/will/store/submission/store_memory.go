package submission

import (
	"context"
	"sort"
	"sync"
	"time"

	"willgen/pkg/platform/sentinel"
)

// MemoryStore holds submissions in process memory for development and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[string]*Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[string]*Submission)}
}

func (s *MemoryStore) Create(_ context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[sub.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *sub
	s.subs[sub.ID] = &clone
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *sub
	return &clone, nil
}

func (s *MemoryStore) Update(_ context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.subs[sub.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if existing.IsLocked {
		return sentinel.ErrLocked
	}
	clone := *sub
	s.subs[sub.ID] = &clone
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Submission, 0, len(s.subs))
	for _, sub := range s.subs {
		all = append(all, *sub)
	}
	// Newest first, ID as tiebreak for stable paging.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryStore) ListExpired(_ context.Context, cutoff time.Time) ([]Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Submission
	for _, sub := range s.subs {
		if sub.CreatedAt.Before(cutoff) && (sub.PDFPath != "" || sub.ChecklistPath != "") {
			out = append(out, *sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) (map[Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Status]int)
	for _, sub := range s.subs {
		counts[sub.Status]++
	}
	return counts, nil
}

func (s *MemoryStore) ClearDocuments(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	sub.PDFPath = ""
	sub.ChecklistPath = ""
	return nil
}
