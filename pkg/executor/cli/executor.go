// Package cli provides a non-interactive executor: it runs a batch of
// commands through a queue session, mirrors progress to the terminal, and
// prints the accumulated results as JSON when the queue finishes.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/entrhq/webpilot/pkg/queue"
	"github.com/entrhq/webpilot/pkg/types"
)

// Executor drives one queue session to exhaustion and renders its events.
type Executor struct {
	session *queue.Session
	writer  io.Writer

	// Display options
	showProgress bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowProgress enables/disables per-tool progress lines on stderr-style
// output. The final JSON result block is always printed.
func WithShowProgress(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showProgress = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// NewExecutor creates a new CLI executor over the given queue session.
func NewExecutor(session *queue.Session, opts ...ExecutorOption) *Executor {
	e := &Executor{
		session:      session,
		writer:       os.Stdout,
		showProgress: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run starts the queue on rawText and blocks until it finishes, then
// prints the results as a JSON array. Returns an error when any command
// ended failed or stopped.
func (e *Executor) Run(ctx context.Context, rawText string) error {
	commands := queue.ParseCommands(rawText)
	if len(commands) == 0 {
		return fmt.Errorf("no commands to run")
	}

	if err := e.session.Start(ctx, rawText); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			e.session.Stop()
			return ctx.Err()
		case event := <-e.session.Events():
			finished, err := e.handleEvent(event)
			if err != nil {
				return err
			}
			if finished {
				return e.printResults()
			}
		}
	}
}

// handleEvent renders one queue event. Returns finished=true on queue
// exhaustion.
func (e *Executor) handleEvent(event types.QueueEvent) (bool, error) {
	switch event.Type {
	case types.EventQueueStarted:
		e.progressf("Running %d command(s)\n", len(e.session.Commands()))
	case types.EventCommandStarted:
		e.progressf("[%d] %s\n", event.Index+1, event.Command)
	case types.EventRecordUpdated:
		if event.Record != nil && len(event.Record.ToolCalls) > 0 {
			last := event.Record.ToolCalls[len(event.Record.ToolCalls)-1]
			e.progressf("    -> %s\n", last.Name)
		}
	case types.EventCommandFinished:
		if event.Result != nil {
			e.progressf("[%d] %s (tokens: %d)\n", event.Index+1, event.Result.Status, event.Result.Usage.Total)
			if event.Result.Error != "" {
				e.progressf("    error: %s\n", event.Result.Error)
			}
		}
	case types.EventQueueError:
		return false, event.Err
	case types.EventQueueFinished:
		return true, nil
	}
	return false, nil
}

// printResults emits the terminal result list as indented JSON. History
// ledgers are omitted from the output; they live in the session log.
func (e *Executor) printResults() error {
	type resultView struct {
		Command string              `json:"command"`
		Status  types.CommandStatus `json:"status"`
		Data    interface{}         `json:"data"`
		Error   string              `json:"error,omitempty"`
		Usage   types.TokenUsage    `json:"usage"`
	}

	results := e.session.Results()
	views := make([]resultView, len(results))
	failures := 0
	for i, r := range results {
		views[i] = resultView{
			Command: r.Command,
			Status:  r.Status,
			Data:    r.Data,
			Error:   r.Error,
			Usage:   r.Usage,
		}
		if r.Status != types.StatusCompleted {
			failures++
		}
	}

	encoded, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	fmt.Fprintln(e.writer, string(encoded))

	usage := e.session.SessionUsage()
	e.progressf("Session tokens: input=%d output=%d total=%d\n", usage.Input, usage.Output, usage.Total)

	if failures > 0 {
		return fmt.Errorf("%d of %d command(s) did not complete", failures, len(results))
	}
	return nil
}

func (e *Executor) progressf(format string, v ...interface{}) {
	if e.showProgress {
		fmt.Fprintf(e.writer, format, v...)
	}
}
