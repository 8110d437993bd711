package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/sceptic-ai/sceptic-go/internal/models"
)

// ErrNotFound is returned when a job id has no store entry.
var ErrNotFound = errors.New("job not found")

// Store is the bounded job cache. Submission inserts, the background worker
// updates, and retrieval reads; all three serialize on one mutex so no
// reader ever observes a half-updated job. When an insert would exceed
// capacity the entry with the oldest insert/update ordinal is evicted.
type Store struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]*entry
	seq      uint64
}

type entry struct {
	job models.AnalysisJob
	// ord is a monotonic insert/update ordinal. Wall-clock timestamps can
	// collide under rapid submission; the ordinal keeps eviction strict.
	ord uint64
}

// NewStore creates a store holding at most capacity jobs.
func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[string]*entry, capacity),
	}
}

// Insert adds a job, evicting the oldest entry first if the store is full.
func (s *Store) Insert(job models.AnalysisJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.ID]; !exists && len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	s.seq++
	job.UpdatedAt = time.Now()
	s.entries[job.ID] = &entry{job: job, ord: s.seq}
}

// Update atomically mutates a job in place. Terminal states are never
// reverted: a mutation that would move a completed or failed job to another
// state is discarded.
func (s *Store) Update(id string, mutate func(*models.AnalysisJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}

	prev := e.job.State
	mutate(&e.job)
	if prev.Terminal() && e.job.State != prev {
		e.job.State = prev
		return nil
	}

	s.seq++
	e.ord = s.seq
	e.job.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of the job for id.
func (s *Store) Get(id string) (models.AnalysisJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return models.AnalysisJob{}, ErrNotFound
	}
	return e.job, nil
}

// Delete removes a job, used when a background submission is rejected.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len reports how many jobs the store currently holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) evictOldest() {
	var oldestID string
	var oldestOrd uint64
	first := true
	for id, e := range s.entries {
		if first || e.ord < oldestOrd {
			oldestID, oldestOrd = id, e.ord
			first = false
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}
