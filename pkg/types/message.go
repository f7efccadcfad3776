// Package types contains the shared data model for webpilot: conversation
// messages, command execution records, token accounting, and the events the
// queue publishes for UI consumption.
package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem is the system prompt role.
	RoleUser      MessageRole = "user"      // RoleUser is the operator/command role.
	RoleAssistant MessageRole = "assistant" // RoleAssistant is the model's role.
	RoleTool      MessageRole = "tool"      // RoleTool carries a tool result back to the model.
)

// ToolCall is a model-issued request to invoke a named tool. Arguments are
// transmitted as a JSON-encoded string and parsed at dispatch time.
type ToolCall struct {
	// ID is the opaque, server-issued call identifier.
	ID string

	// Name is the tool to invoke.
	Name string

	// Arguments is the JSON-encoded argument object.
	Arguments string
}

// Message is one entry in the conversation transcript sent to the model.
type Message struct {
	// Role indicates the author of the message.
	Role MessageRole

	// Content is the textual body. May be empty on assistant messages that
	// only carry tool calls.
	Content string

	// ToolCalls holds the tool invocations requested by an assistant message.
	ToolCalls []ToolCall

	// ToolCallID correlates a tool-role message to the originating call.
	ToolCallID string
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-role message, optionally carrying
// tool calls.
func NewAssistantMessage(content string, toolCalls []ToolCall) *Message {
	return &Message{Role: RoleAssistant, Content: content, ToolCalls: toolCalls}
}

// NewToolMessage creates a tool-role message answering the call with the
// given id.
func NewToolMessage(toolCallID, content string) *Message {
	return &Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// TokenUsage tracks token consumption. Counters are monotonically
// non-decreasing within a command attempt. Two independent accumulators
// exist at runtime: one per command attempt (reset at attempt start) and one
// per queue session (never reset while the queue is active).
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// Add accumulates another usage sample into the counter.
func (u *TokenUsage) Add(other TokenUsage) {
	u.Input += other.Input
	u.Output += other.Output
	u.Total += other.Total
}
