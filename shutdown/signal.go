package shutdown

import (
	"os"
	"sync"
)

// SignalCounter counts shutdown signals: the first starts a graceful shutdown, reaching
// forceAfter calls onForce. It remembers the first signal so the process can exit with
// the matching code.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	first      os.Signal
	forceAfter int
	onForce    func(sig os.Signal)
}

// NewSignalCounter creates a counter that calls onForce (which may be nil) once the count
// reaches forceAfter.
func NewSignalCounter(forceAfter int, onForce func(sig os.Signal)) *SignalCounter {
	return &SignalCounter{
		forceAfter: forceAfter,
		onForce:    onForce,
	}
}

// Record counts sig and returns the new count. onForce runs under the lock, so it should
// be quick or exit the process.
func (s *SignalCounter) Record(sig os.Signal) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.first == nil {
		s.first = sig
	}
	if s.count >= s.forceAfter && s.onForce != nil {
		s.onForce(sig)
	}
	return s.count
}

// Count returns the number of recorded signals.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// First returns the first recorded signal, or nil.
func (s *SignalCounter) First() os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first
}

// Reset clears the count and the remembered signal.
func (s *SignalCounter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = 0
	s.first = nil
}
