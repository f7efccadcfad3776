// Package llm provides abstractions for LLM provider integration.
//
// Providers handle API communication with LLM services and return plain
// ChatResponse values. This design keeps providers focused on transport
// concerns without coupling them to the execution loop or queue.
//
// The agent layer is responsible for:
// - Building the transcript and tool schema for each round-trip
// - Dispatching requested tool calls and feeding results back
// - Budget enforcement and completion detection
//
// This separation keeps providers reusable outside the agent (scripts,
// batch extraction) and independently testable.
package llm

import (
	"context"

	"github.com/entrhq/webpilot/pkg/types"
)

// ToolDefinition advertises one tool to the model: a name, a description,
// and a JSON-schema parameter object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ChatRequest is one model round-trip: the accumulated transcript plus the
// full tool schema. ForceToolChoice requires the model to select a tool on
// every turn; SequentialToolCalls disables parallel tool calls so each
// call's page side effects are visible to the next call's preconditions.
type ChatRequest struct {
	Model               string
	Messages            []*types.Message
	Tools               []ToolDefinition
	ForceToolChoice     bool
	SequentialToolCalls bool
}

// ChatResponse is the model's answer to one round-trip.
type ChatResponse struct {
	// Content is the optional free-text portion of the assistant message.
	Content string

	// ToolCalls lists the tool invocations the model requested, in order.
	ToolCalls []types.ToolCall

	// Usage is the token count reported by the API for this round-trip.
	Usage types.TokenUsage
}

// Provider defines the interface for LLM integrations.
type Provider interface {
	// Complete sends one request to the model and returns the full
	// response. A transport or API failure aborts the calling attempt, so
	// errors here are not recovered into tool results.
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// GetModel returns the default model name the provider targets.
	GetModel() string
}
