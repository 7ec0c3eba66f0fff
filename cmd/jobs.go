package main

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job states.
const (
	jobQueued   = "queued"
	jobRunning  = "running"
	jobComplete = "complete"
	jobError    = "error"
)

// job tracks one background fetch. State is held in memory and lost on
// restart.
type job struct {
	ID      string    `json:"id"`
	Ticker  string    `json:"ticker"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type jobStore struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*job)}
}

func (s *jobStore) create(ticker string) *job {
	now := time.Now().UTC()
	j := &job{
		ID:      uuid.New().String(),
		Ticker:  ticker,
		Status:  jobQueued,
		Created: now,
		Updated: now,
	}
	s.mu.Lock()
	s.jobs[j.ID] = j
	s.mu.Unlock()
	return j
}

func (s *jobStore) update(id, status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = status
		j.Error = errMsg
		j.Updated = time.Now().UTC()
	}
}

func (s *jobStore) get(id string) (job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return job{}, false
	}
	return *j, true
}

// list returns all jobs, newest first.
func (s *jobStore) list() []job {
	s.mu.Lock()
	out := make([]job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, k int) bool {
		return out[i].Created.After(out[k].Created)
	})
	return out
}
