package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDAgent is the identifier for the agent settings section
	SectionIDAgent = "agent"

	// DefaultMaxToolCalls is the default round-trip cap per command.
	DefaultMaxToolCalls = 25

	// DefaultMaxTokens is the default token budget per command.
	DefaultMaxTokens = 200000
)

// AgentSection manages the execution budgets and prompt customization
// applied to every command attempt.
type AgentSection struct {
	CustomInstructions string
	MaxToolCalls       int
	MaxTokens          int
	mu                 sync.RWMutex
}

// NewAgentSection creates a new agent section with default settings.
func NewAgentSection() *AgentSection {
	return &AgentSection{
		MaxToolCalls: DefaultMaxToolCalls,
		MaxTokens:    DefaultMaxTokens,
	}
}

// ID returns the section identifier.
func (s *AgentSection) ID() string {
	return SectionIDAgent
}

// Title returns the section title.
func (s *AgentSection) Title() string {
	return "Agent Settings"
}

// Description returns the section description.
func (s *AgentSection) Description() string {
	return "Per-command execution budgets (tool calls, tokens) and custom instructions appended to the system prompt."
}

// Data returns the current configuration data.
func (s *AgentSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"custom_instructions": s.CustomInstructions,
		"max_tool_calls":      s.MaxToolCalls,
		"max_tokens":          s.MaxTokens,
	}
}

// SetData updates the configuration from the provided data.
func (s *AgentSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if instructions, ok := data["custom_instructions"].(string); ok {
		s.CustomInstructions = instructions
	}
	if maxToolCalls, ok := asInt(data["max_tool_calls"]); ok {
		s.MaxToolCalls = maxToolCalls
	}
	if maxTokens, ok := asInt(data["max_tokens"]); ok {
		s.MaxTokens = maxTokens
	}
	return nil
}

// Validate validates the current configuration.
func (s *AgentSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.MaxToolCalls < 0 {
		return fmt.Errorf("max_tool_calls must not be negative")
	}
	if s.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *AgentSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CustomInstructions = ""
	s.MaxToolCalls = DefaultMaxToolCalls
	s.MaxTokens = DefaultMaxTokens
}

// GetCustomInstructions returns the configured prompt instructions.
func (s *AgentSection) GetCustomInstructions() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CustomInstructions
}

// SetCustomInstructions sets the prompt instructions.
func (s *AgentSection) SetCustomInstructions(instructions string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CustomInstructions = instructions
}

// GetMaxToolCalls returns the round-trip cap per command.
func (s *AgentSection) GetMaxToolCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxToolCalls
}

// SetMaxToolCalls sets the round-trip cap per command.
func (s *AgentSection) SetMaxToolCalls(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MaxToolCalls = n
}

// GetMaxTokens returns the token budget per command.
func (s *AgentSection) GetMaxTokens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxTokens
}

// SetMaxTokens sets the token budget per command.
func (s *AgentSection) SetMaxTokens(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MaxTokens = n
}

// asInt coerces stored JSON numbers, which decode as float64, back to int.
func asInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
