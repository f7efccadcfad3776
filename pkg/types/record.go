package types

import "time"

// CommandStatus is the lifecycle state of a command attempt or result.
type CommandStatus string

const (
	StatusExecuting CommandStatus = "executing" // StatusExecuting marks the attempt currently driving model round-trips.
	StatusCompleted CommandStatus = "completed" // StatusCompleted is the terminal success state.
	StatusFailed    CommandStatus = "failed"    // StatusFailed is the terminal unrecoverable-error state.
	StatusStopped   CommandStatus = "stopped"   // StatusStopped is the terminal operator-cancelled state.
	StatusRetrying  CommandStatus = "retrying"  // StatusRetrying marks a failed/stopped result being re-attempted.
)

// IsTerminal reports whether the status ends a command attempt.
func (s CommandStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusStopped
}

// ToolCallEvent records one tool invocation requested by the model during a
// command attempt. Append-only within a CommandRecord.
type ToolCallEvent struct {
	// ID is the server-issued tool call id.
	ID string `json:"id"`

	// Name is the invoked tool.
	Name string `json:"name"`

	// Arguments holds the parsed argument object. Empty when the argument
	// JSON was malformed.
	Arguments map[string]interface{} `json:"arguments"`

	// Timestamp is when the call was dispatched.
	Timestamp time.Time `json:"timestamp"`
}

// ToolResultEvent records the textual outcome of one tool call. The
// ToolCallID is a back-reference, correlating to a ToolCallEvent by id.
type ToolResultEvent struct {
	ToolCallID string    `json:"tool_call_id"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
}

// CommandRecord is the mutable execution ledger for one command attempt. It
// is owned exclusively by the execution loop while the attempt runs and
// copied into the queue's result list at the terminal transition.
type CommandRecord struct {
	Command            string            `json:"command"`
	Status             CommandStatus     `json:"status"`
	ToolCalls          []ToolCallEvent   `json:"tool_calls"`
	ToolResults        []ToolResultEvent `json:"tool_results"`
	AssistantResponses []string          `json:"assistant_responses"`
	Usage              TokenUsage        `json:"usage"`

	// Data carries the extracted payload on completion (arbitrary JSON value).
	Data interface{} `json:"data"`

	// Error holds the terminal failure message, empty otherwise.
	Error string `json:"error,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// NewCommandRecord creates the ledger for a fresh attempt at the command.
func NewCommandRecord(command string) *CommandRecord {
	return &CommandRecord{
		Command:   command,
		Status:    StatusExecuting,
		StartedAt: time.Now(),
	}
}

// Clone returns a deep copy of the record so the queue can own a snapshot
// independent of the loop's live ledger.
func (r *CommandRecord) Clone() *CommandRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.ToolCalls = append([]ToolCallEvent(nil), r.ToolCalls...)
	c.ToolResults = append([]ToolResultEvent(nil), r.ToolResults...)
	c.AssistantResponses = append([]string(nil), r.AssistantResponses...)
	for i, tc := range c.ToolCalls {
		if tc.Arguments != nil {
			args := make(map[string]interface{}, len(tc.Arguments))
			for k, v := range tc.Arguments {
				args[k] = v
			}
			c.ToolCalls[i].Arguments = args
		}
	}
	return &c
}

// CommandResult is the queue-owned terminal record for one command. A retry
// merges into the existing result rather than appending a new one, so one
// result exists per queued command line.
type CommandResult struct {
	Command string        `json:"command"`
	Status  CommandStatus `json:"status"`

	// Data is the extracted payload, or nil. Retry merges combine payloads:
	// two non-array values become a 2-element array, an array absorbs a
	// scalar, and two arrays concatenate in original-then-retry order.
	Data interface{} `json:"data"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`

	// History is the full execution ledger. Retries concatenate their
	// events onto the original history.
	History *CommandRecord `json:"history"`

	// Usage is the token snapshot for this result; retries add onto it.
	Usage TokenUsage `json:"usage"`
}

// NewCommandResult builds the queue-owned result from a finished attempt.
func NewCommandResult(record *CommandRecord) *CommandResult {
	snapshot := record.Clone()
	return &CommandResult{
		Command: snapshot.Command,
		Status:  snapshot.Status,
		Data:    snapshot.Data,
		Error:   snapshot.Error,
		History: snapshot,
		Usage:   snapshot.Usage,
	}
}
