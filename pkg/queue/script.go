package queue

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a batch of commands loaded from a YAML file, with optional
// per-batch overrides for the execution budgets and prompt instructions.
type Script struct {
	Commands           []string `yaml:"commands"`
	CustomInstructions string   `yaml:"custom_instructions,omitempty"`
	MaxToolCalls       int      `yaml:"max_tool_calls,omitempty"`
	MaxTokens          int      `yaml:"max_tokens,omitempty"`
}

// LoadScript reads and validates a command script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script file: %w", err)
	}

	var commands []string
	for _, cmd := range script.Commands {
		cmd = strings.TrimSpace(cmd)
		if cmd != "" {
			commands = append(commands, cmd)
		}
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("script file %s contains no commands", path)
	}
	script.Commands = commands
	return &script, nil
}

// RawText renders the script's commands as the line-per-command input
// Session.Start expects.
func (s *Script) RawText() string {
	return strings.Join(s.Commands, "\n")
}
