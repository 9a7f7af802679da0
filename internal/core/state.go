package core

import "sync"

// ExchangeState tracks review exchanges across their goroutines
type ExchangeState struct {
	mu        sync.RWMutex
	inFlight  int
	completed int
	failed    int
}

func NewExchangeState() *ExchangeState {
	return &ExchangeState{}
}

// Begin records a newly started exchange
func (s *ExchangeState) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
}

// Finish records a settled exchange
func (s *ExchangeState) Finish(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if failed {
		s.failed++
	} else {
		s.completed++
	}
}

// Snapshot returns the counters under one lock
func (s *ExchangeState) Snapshot() (inFlight, completed, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight, s.completed, s.failed
}

func (s *ExchangeState) InFlight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}
