// Package memory keeps reload reports in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"tintcore/internal/reload"
)

// DefaultCapacity bounds the number of reports retained.
const DefaultCapacity = 256

// Store is a bounded in-memory journal. The oldest report is evicted first.
type Store struct {
	mu       sync.RWMutex
	reports  []reload.Report
	capacity int
}

// NewStore returns a store holding at most capacity reports; zero or less
// selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Record appends r, replacing an earlier report with the same id.
func (s *Store) Record(_ context.Context, r reload.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID == r.ID {
			s.reports[i] = cloneReport(r)
			return nil
		}
	}
	s.reports = append(s.reports, cloneReport(r))
	if over := len(s.reports) - s.capacity; over > 0 {
		s.reports = append([]reload.Report(nil), s.reports[over:]...)
	}
	return nil
}

// Recent returns up to n reports, newest first.
func (s *Store) Recent(_ context.Context, n int) ([]reload.Report, error) {
	s.mu.RLock()
	out := make([]reload.Report, 0, len(s.reports))
	for i := len(s.reports) - 1; i >= 0; i-- {
		out = append(out, cloneReport(s.reports[i]))
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Len returns the number of retained reports.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

func (s *Store) Close() error { return nil }

func cloneReport(r reload.Report) reload.Report {
	r.Categories = append([]reload.CategoryReport(nil), r.Categories...)
	return r
}
