package agent

import "sync"

// ExecutionState carries the operator-facing control flags shared between
// the queue coordinator (writer) and the execution loop (reader). Stop is a
// one-shot signal: the first poll point that observes it also clears it, so
// a stop issued during command N never bleeds into command N+1.
type ExecutionState struct {
	mu      sync.Mutex
	paused  bool
	stopped bool
}

// NewExecutionState creates a state with no flags set.
func NewExecutionState() *ExecutionState {
	return &ExecutionState{}
}

// Pause sets the pause flag. Pausing never interrupts the command in
// flight; it is honored between commands.
func (s *ExecutionState) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume clears the pause flag.
func (s *ExecutionState) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// IsPaused reports whether the pause flag is set.
func (s *ExecutionState) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// RequestStop sets the stop flag for the current command.
func (s *ExecutionState) RequestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Reset clears both flags. The queue coordinator resets the shared state
// at the start of every batch and retry instead of replacing the pointer,
// so operator methods can keep signaling through it without a lock on the
// session.
func (s *ExecutionState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.stopped = false
}

// ConsumeStop reports whether a stop was requested, clearing the flag when
// it was. Only the execution loop's poll points call this.
func (s *ExecutionState) ConsumeStop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		return false
	}
	s.stopped = false
	return true
}
