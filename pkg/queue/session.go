// Package queue implements the command queue coordinator: an ordered batch
// of natural-language commands run one at a time through an injected
// execution function, with operator-controlled pause, resume, stop, and
// retry, and cross-command token accounting.
package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/webpilot/pkg/agent"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/types"
)

// DefaultPacingDelay is the fixed wait between consecutive commands.
// Pacing, not a correctness requirement.
const DefaultPacingDelay = 1 * time.Second

// DefaultEventBuffer is the capacity of the event channel. Events are
// dropped rather than blocking the coordinator when the consumer lags.
const DefaultEventBuffer = 128

// ExecuteFunc runs one command attempt to a terminal record. The state
// carries the operator stop flag; observe receives ledger snapshots while
// the attempt runs. A nil record or a returned error is treated as an
// execution-machinery failure and synthesized into a Failed result.
type ExecuteFunc func(ctx context.Context, command string, state *agent.ExecutionState, observe func(*types.CommandRecord)) (*types.CommandRecord, error)

// Session owns one queue of commands and its accumulated results. All
// mutation goes through Session methods; commands execute sequentially on a
// single worker goroutine.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	execute ExecuteFunc
	// state is assigned once in NewSession and never replaced; batch and
	// retry boundaries call Reset on it so the operator methods may signal
	// through it without taking mu.
	state *agent.ExecutionState
	log   *logging.Logger

	commands     []string
	results      []*types.CommandResult
	index        int
	processing   bool
	active       bool
	sessionUsage types.TokenUsage

	delay  time.Duration
	events chan types.QueueEvent
}

// Option configures a Session.
type Option func(*Session)

// WithPacingDelay overrides the inter-command delay. Tests inject zero.
func WithPacingDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithEventBuffer overrides the event channel capacity.
func WithEventBuffer(n int) Option {
	return func(s *Session) { s.events = make(chan types.QueueEvent, n) }
}

// WithSessionLogger sets the debug logger.
func WithSessionLogger(log *logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession creates an idle session over the given execution function.
func NewSession(execute ExecuteFunc, opts ...Option) *Session {
	s := &Session{
		execute: execute,
		state:   agent.NewExecutionState(),
		delay:   DefaultPacingDelay,
		events:  make(chan types.QueueEvent, DefaultEventBuffer),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the observable state-change stream.
func (s *Session) Events() <-chan types.QueueEvent {
	return s.events
}

// ParseCommands splits raw input into the non-empty trimmed command lines
// the queue will run.
func ParseCommands(rawText string) []string {
	var commands []string
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			commands = append(commands, line)
		}
	}
	return commands
}

// Start parses rawText into command lines, resets all per-queue state, and
// begins processing from index 0 on a worker goroutine. Empty input is a
// no-op. Starting while a queue is already processing is an error.
func (s *Session) Start(ctx context.Context, rawText string) error {
	commands := ParseCommands(rawText)
	if len(commands) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.processing || s.active {
		s.mu.Unlock()
		return fmt.Errorf("queue is already running")
	}
	s.commands = commands
	s.results = nil
	s.index = 0
	s.sessionUsage = types.TokenUsage{}
	s.active = true
	s.state.Reset()
	s.mu.Unlock()

	s.emit(types.QueueEvent{Type: types.EventQueueStarted})
	s.debugf("queue started with %d commands", len(commands))

	go s.run(ctx)
	return nil
}

// run processes commands in order until exhaustion. One attempt at a time;
// pause is honored between commands, never mid-attempt.
func (s *Session) run(ctx context.Context) {
	for {
		s.waitWhilePaused()

		s.mu.Lock()
		if !s.active || s.index >= len(s.commands) {
			s.active = false
			s.mu.Unlock()
			s.emitTerminal(types.QueueEvent{Type: types.EventQueueFinished, SessionUsage: s.SessionUsage()})
			s.debugf("queue finished")
			return
		}
		index := s.index
		command := s.commands[index]
		s.processing = true
		s.mu.Unlock()

		s.emit(types.QueueEvent{Type: types.EventCommandStarted, Index: index, Command: command})

		record := s.runAttempt(ctx, command)
		result := types.NewCommandResult(record)

		s.mu.Lock()
		s.results = append(s.results, result)
		s.sessionUsage.Add(record.Usage)
		s.index++
		s.processing = false
		usage := s.sessionUsage
		more := s.index < len(s.commands)
		s.mu.Unlock()

		s.emitTerminal(types.QueueEvent{
			Type:         types.EventCommandFinished,
			Index:        index,
			Command:      command,
			Result:       result,
			SessionUsage: usage,
		})
		s.debugf("command %d finished: status=%s", index, result.Status)

		if more {
			if !s.sleep(ctx, s.delay) {
				return
			}
		}
	}
}

// runAttempt invokes the execute function, converting panics and errors
// from the execution machinery into a synthesized Failed record so a single
// bad command never stalls the queue.
func (s *Session) runAttempt(ctx context.Context, command string) (record *types.CommandRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.debugf("execute panicked for %q: %v", command, r)
			record = synthesizeFailure(command, fmt.Sprintf("command execution panicked: %v", r))
		}
	}()

	observe := func(snapshot *types.CommandRecord) {
		s.emit(types.QueueEvent{
			Type:    types.EventRecordUpdated,
			Index:   s.CurrentIndex(),
			Command: command,
			Record:  snapshot,
		})
	}

	rec, err := s.execute(ctx, command, s.state, observe)
	if err != nil {
		s.debugf("execute errored for %q: %v", command, err)
		return synthesizeFailure(command, fmt.Sprintf("command execution failed: %v", err))
	}
	if rec == nil {
		return synthesizeFailure(command, "command execution returned no record")
	}
	return rec
}

func synthesizeFailure(command, message string) *types.CommandRecord {
	record := types.NewCommandRecord(command)
	record.Status = types.StatusFailed
	record.Error = message
	record.CompletedAt = time.Now()
	return record
}

// Retry re-runs the command behind a failed or stopped result and merges
// the new attempt into the existing result in place. Only legal while the
// queue is idle.
func (s *Session) Retry(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return fmt.Errorf("cannot retry while a command is executing")
	}
	if index < 0 || index >= len(s.results) {
		s.mu.Unlock()
		return fmt.Errorf("no result at index %d", index)
	}
	result := s.results[index]
	if result.Status != types.StatusFailed && result.Status != types.StatusStopped {
		s.mu.Unlock()
		return fmt.Errorf("result at index %d is %s; only failed or stopped results can be retried", index, result.Status)
	}
	result.Status = types.StatusRetrying
	result.Error = ""
	command := result.Command
	s.processing = true
	s.state.Reset()
	s.mu.Unlock()

	s.emit(types.QueueEvent{Type: types.EventRetryStarted, Index: index, Command: command})
	s.debugf("retrying command %d: %q", index, command)

	go func() {
		record := s.runAttempt(ctx, command)

		s.mu.Lock()
		merged := mergeResult(s.results[index], record)
		s.results[index] = merged
		s.sessionUsage.Add(record.Usage)
		s.processing = false
		usage := s.sessionUsage
		s.mu.Unlock()

		s.emitTerminal(types.QueueEvent{
			Type:         types.EventRetryFinished,
			Index:        index,
			Command:      command,
			Result:       merged,
			SessionUsage: usage,
		})
		s.debugf("retry %d finished: status=%s", index, merged.Status)
	}()
	return nil
}

// Stop requests the current attempt to terminate at its next poll point.
// The queue treats the resulting Stopped status as a normal terminal
// outcome and advances.
func (s *Session) Stop() {
	s.state.RequestStop()
	s.emit(types.QueueEvent{Type: types.EventStopRequested, Index: s.CurrentIndex()})
}

// Pause suspends scheduling of the next command. The attempt in flight
// keeps running to its own terminal transition.
func (s *Session) Pause() {
	s.state.Pause()
	s.emit(types.QueueEvent{Type: types.EventQueuePaused})
}

// Resume clears the pause flag and wakes the scheduler.
func (s *Session) Resume() {
	s.state.Resume()
	s.mu.Lock()
	s.cond.Broadcast()
	s.mu.Unlock()
	s.emit(types.QueueEvent{Type: types.EventQueueResumed})
}

// Clear resets the session to its initial idle form. Only legal while no
// attempt is in flight.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return fmt.Errorf("cannot clear while a command is executing")
	}
	s.commands = nil
	s.results = nil
	s.index = 0
	s.sessionUsage = types.TokenUsage{}
	s.active = false
	s.state.Reset()
	s.cond.Broadcast()
	s.mu.Unlock()

	s.emit(types.QueueEvent{Type: types.EventQueueCleared})
	return nil
}

// Commands returns the queued command lines.
func (s *Session) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Results returns snapshots of the accumulated results.
func (s *Session) Results() []*types.CommandResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	results := make([]*types.CommandResult, len(s.results))
	for i, r := range s.results {
		c := *r
		c.History = r.History.Clone()
		results[i] = &c
	}
	return results
}

// CurrentIndex returns the position of the command being (or next to be)
// executed.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// IsProcessing reports whether an attempt is in flight.
func (s *Session) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// IsPaused reports whether scheduling is suspended.
func (s *Session) IsPaused() bool {
	return s.state.IsPaused()
}

// IsActive reports whether a started queue still has commands to run.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SessionUsage returns the cross-command token accumulator. It always
// equals the sum of all recorded per-command usage totals.
func (s *Session) SessionUsage() types.TokenUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionUsage
}

func (s *Session) waitWhilePaused() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.active && s.state.IsPaused() {
		s.cond.Wait()
	}
}

// sleep waits for the pacing delay, returning false when the context ends
// first.
func (s *Session) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// emit publishes an event without ever blocking the coordinator. Events are
// dropped when the consumer falls behind.
func (s *Session) emit(event types.QueueEvent) {
	select {
	case s.events <- event:
	default:
	}
}

// emitTerminal publishes an event observers rely on to exit or to collect a
// result, so it must never be lost. When the buffer is full the oldest
// buffered event is discarded to make room; the coordinator still never
// blocks.
func (s *Session) emitTerminal(event types.QueueEvent) {
	for {
		select {
		case s.events <- event:
			return
		default:
		}
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *Session) debugf(format string, v ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, v...)
	}
}
