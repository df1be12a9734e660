package images

import "sync"

// RunState carries the sequential image identity and failure count for a
// single scrape run. It is created by the controller at run start and passed
// by reference into every resolution call; it must never outlive the run.
type RunState struct {
	mu     sync.Mutex
	next   int
	failed int
}

func NewRunState() *RunState {
	return &RunState{}
}

// NextIndex returns the next sequential image index. Indices are handed out
// before any fetch begins and are never reused, so a failed resolution still
// consumes its index.
func (s *RunState) NextIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	s.next++
	return n
}

func (s *RunState) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

func (s *RunState) FailedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}
