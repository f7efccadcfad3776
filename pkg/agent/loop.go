// Package agent implements the per-command execution loop: model
// round-trips, sequential tool dispatch, completion detection, and budget
// enforcement. The queue coordinator in pkg/queue sequences commands; this
// package drives exactly one command at a time.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrhq/webpilot/pkg/agent/prompts"
	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/llm"
	"github.com/entrhq/webpilot/pkg/llm/tokenizer"
	"github.com/entrhq/webpilot/pkg/logging"
	"github.com/entrhq/webpilot/pkg/types"
)

// DefaultMaxIterations is the hard ceiling on model round-trips per
// command. A caller-supplied MaxToolCalls can lower it, never raise it.
const DefaultMaxIterations = 50

// Options configure one command attempt. Zero values mean "no budget".
type Options struct {
	// MaxToolCalls caps model round-trips for the attempt. Values above
	// DefaultMaxIterations are clamped.
	MaxToolCalls int

	// MaxTokens caps total token usage for the attempt. Exceeding it
	// aborts the attempt as failed.
	MaxTokens int

	// CustomInstructions is end-user prompt text appended to the system
	// prompt.
	CustomInstructions string
}

// Loop drives a single command to a terminal status. It is not safe for
// concurrent Run calls; the queue coordinator serializes commands.
type Loop struct {
	provider  llm.Provider
	registry  *tools.Registry
	tokenizer *tokenizer.Tokenizer
	log       *logging.Logger
	onUpdate  func(*types.CommandRecord)
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithTokenizer enables pre-emptive prompt-size estimation for the token
// budget check.
func WithTokenizer(t *tokenizer.Tokenizer) LoopOption {
	return func(l *Loop) { l.tokenizer = t }
}

// WithLogger sets the debug logger.
func WithLogger(log *logging.Logger) LoopOption {
	return func(l *Loop) { l.log = log }
}

// WithRecordObserver registers a callback invoked with a snapshot of the
// live record after every mutation, so a UI can render progress while the
// attempt runs.
func WithRecordObserver(fn func(*types.CommandRecord)) LoopOption {
	return func(l *Loop) { l.onUpdate = fn }
}

// NewLoop creates an execution loop over the given provider and tool set.
func NewLoop(provider llm.Provider, registry *tools.Registry, opts ...LoopOption) *Loop {
	l := &Loop{
		provider: provider,
		registry: registry,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes one command to a terminal status and returns its ledger.
// The returned record is always terminal: Completed, Failed, or Stopped.
//
// Stop is polled at two points per round-trip: before starting a batch of
// tool dispatches, and before each individual dispatch within the batch. A
// tool call already in flight always completes.
func (l *Loop) Run(ctx context.Context, command string, opts Options, state *ExecutionState) *types.CommandRecord {
	record := types.NewCommandRecord(command)
	l.publish(record)

	if err := l.checkCredential(); err != nil {
		return l.fail(record, err.Error())
	}

	systemPrompt := prompts.NewPromptBuilder().
		WithCustomInstructions(opts.CustomInstructions).
		Build()
	messages := prompts.BuildMessages(systemPrompt, command)
	definitions := l.registry.Definitions()

	maxIterations := DefaultMaxIterations
	if opts.MaxToolCalls > 0 && opts.MaxToolCalls < maxIterations {
		maxIterations = opts.MaxToolCalls
	}

	for iteration := 0; iteration < maxIterations; iteration++ {
		if err := l.checkTokenBudget(record, messages, opts.MaxTokens); err != nil {
			return l.fail(record, err.Error())
		}

		resp, err := l.provider.Complete(ctx, &llm.ChatRequest{
			Model:               l.provider.GetModel(),
			Messages:            messages,
			Tools:               definitions,
			ForceToolChoice:     true,
			SequentialToolCalls: true,
		})
		if err != nil {
			return l.fail(record, fmt.Sprintf("model call failed: %v", err))
		}

		record.Usage.Add(resp.Usage)
		if resp.Content != "" {
			record.AssistantResponses = append(record.AssistantResponses, resp.Content)
		}
		messages = append(messages, types.NewAssistantMessage(resp.Content, resp.ToolCalls))
		l.publish(record)
		l.debugf("iteration %d: %d tool calls, usage total %d", iteration, len(resp.ToolCalls), record.Usage.Total)

		// Fallback: a response with no tool calls ends the command with the
		// assistant text as the result.
		if len(resp.ToolCalls) == 0 {
			record.Data = resp.Content
			return l.finish(record, types.StatusCompleted)
		}

		if state != nil && state.ConsumeStop() {
			return l.finish(record, types.StatusStopped)
		}

		for _, call := range resp.ToolCalls {
			if state != nil && state.ConsumeStop() {
				return l.finish(record, types.StatusStopped)
			}

			outcome := l.dispatch(ctx, call, record)
			if outcome.done {
				record.Data = outcome.data
				return l.finish(record, types.StatusCompleted)
			}
			messages = append(messages, types.NewToolMessage(call.ID, outcome.result))
			l.publish(record)
		}
	}

	// Round-trip budget exhausted without a completion signal. Surface the
	// last assistant text as best-effort data.
	if n := len(record.AssistantResponses); n > 0 {
		record.Data = record.AssistantResponses[n-1]
	}
	return l.fail(record, fmt.Sprintf("tool call budget (%d) exhausted before completion", maxIterations))
}

// dispatchOutcome is the result of executing one tool call.
type dispatchOutcome struct {
	// result is the textual tool result fed back to the model.
	result string

	// done reports that the completion sentinel was observed; data carries
	// its payload. When done is set the remaining calls in the batch are
	// abandoned and no tool message is appended.
	done bool
	data interface{}
}

// dispatch executes one tool call, recovering tool-level failures into
// textual results so the model can react.
func (l *Loop) dispatch(ctx context.Context, call types.ToolCall, record *types.CommandRecord) dispatchOutcome {
	args := make(map[string]interface{})
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			l.debugf("tool %s: malformed arguments: %v", call.Name, err)
			result := fmt.Sprintf("Error: arguments for tool '%s' are not valid JSON: %v. Re-issue the call with corrected arguments.", call.Name, err)
			l.recordCall(record, call, nil, result)
			return dispatchOutcome{result: result}
		}
	}

	tool, exists := l.registry.Get(call.Name)
	if !exists {
		result := fmt.Sprintf("Error: unknown tool '%s'. Use only the tools provided in the schema.", call.Name)
		l.recordCall(record, call, args, result)
		return dispatchOutcome{result: result}
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		l.debugf("tool %s failed: %v", call.Name, err)
		result = fmt.Sprintf("Error executing tool '%s': %v. Adjust your approach based on the current page state and try again.", call.Name, err)
		l.recordCall(record, call, args, result)
		return dispatchOutcome{result: result}
	}

	if tool.IsLoopBreaking() {
		if data, ok := tools.ParseCompletion(result); ok {
			// The successful completion call is the terminal signal, not a
			// browsing step, so it is not recorded as a tool event.
			return dispatchOutcome{done: true, data: data}
		}
	}

	l.recordCall(record, call, args, result)
	return dispatchOutcome{result: result}
}

// recordCall appends the call/result pair to the ledger.
func (l *Loop) recordCall(record *types.CommandRecord, call types.ToolCall, args map[string]interface{}, result string) {
	now := time.Now()
	record.ToolCalls = append(record.ToolCalls, types.ToolCallEvent{
		ID:        call.ID,
		Name:      call.Name,
		Arguments: args,
		Timestamp: now,
	})
	record.ToolResults = append(record.ToolResults, types.ToolResultEvent{
		ToolCallID: call.ID,
		Content:    result,
		Timestamp:  now,
	})
}

// checkCredential rejects the attempt up front when the provider carries an
// empty credential, so the failure is a configuration message rather than a
// transport error mid-flight.
func (l *Loop) checkCredential() error {
	type credentialed interface {
		GetAPIKey() string
	}
	if p, ok := l.provider.(credentialed); ok && p.GetAPIKey() == "" {
		return fmt.Errorf("no API key configured: set an API key before running commands")
	}
	return nil
}

// checkTokenBudget enforces the attempt-level token cap before issuing the
// next round-trip. With a tokenizer available the upcoming prompt is
// estimated and counted against the budget as well.
func (l *Loop) checkTokenBudget(record *types.CommandRecord, messages []*types.Message, maxTokens int) error {
	if maxTokens <= 0 {
		return nil
	}
	projected := record.Usage.Total
	if l.tokenizer != nil {
		projected += l.tokenizer.CountMessagesTokens(messages)
	}
	if projected >= maxTokens {
		return fmt.Errorf("token budget exceeded: %d tokens used or projected against a budget of %d", projected, maxTokens)
	}
	return nil
}

func (l *Loop) finish(record *types.CommandRecord, status types.CommandStatus) *types.CommandRecord {
	record.Status = status
	record.CompletedAt = time.Now()
	l.publish(record)
	l.debugf("command finished: status=%s toolCalls=%d usage=%d", status, len(record.ToolCalls), record.Usage.Total)
	return record
}

func (l *Loop) fail(record *types.CommandRecord, message string) *types.CommandRecord {
	record.Error = message
	return l.finish(record, types.StatusFailed)
}

func (l *Loop) publish(record *types.CommandRecord) {
	if l.onUpdate != nil {
		l.onUpdate(record.Clone())
	}
}

func (l *Loop) debugf(format string, v ...interface{}) {
	if l.log != nil {
		l.log.Debugf(format, v...)
	}
}
