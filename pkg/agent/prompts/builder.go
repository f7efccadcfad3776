package prompts

import (
	"strings"

	"github.com/entrhq/webpilot/pkg/types"
)

// PromptBuilder constructs the system prompt for a command session.
type PromptBuilder struct {
	customInstructions string
}

// NewPromptBuilder creates a prompt builder with default settings.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// WithCustomInstructions adds end-user instructions. These are appended
// after the base sections so they can refine, but not replace, the
// operating rules.
func (pb *PromptBuilder) WithCustomInstructions(instructions string) *PromptBuilder {
	pb.customInstructions = instructions
	return pb
}

// Build assembles the complete system prompt.
func (pb *PromptBuilder) Build() string {
	var builder strings.Builder

	builder.WriteString(RolePrompt)
	builder.WriteString("\n\n")
	builder.WriteString(PageSnapshotPrompt)
	builder.WriteString("\n\n")
	builder.WriteString(AgentLoopPrompt)
	builder.WriteString("\n\n")
	builder.WriteString(DataFormatPrompt)

	if strings.TrimSpace(pb.customInstructions) != "" {
		builder.WriteString("\n\n<custom_instructions>\n")
		builder.WriteString(strings.TrimSpace(pb.customInstructions))
		builder.WriteString("\n</custom_instructions>")
	}

	return builder.String()
}

// BuildMessages produces the initial transcript for a command: the system
// prompt followed by the command as the user turn.
func BuildMessages(systemPrompt, command string) []*types.Message {
	return []*types.Message{
		types.NewSystemMessage(systemPrompt),
		types.NewUserMessage(command),
	}
}
