package browser

import (
	"context"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/page"
)

// InputTextTool types text into a numbered form control.
type InputTextTool struct {
	dispatcher *page.Dispatcher
}

// NewInputTextTool creates a new input tool.
func NewInputTextTool(dispatcher *page.Dispatcher) *InputTextTool {
	return &InputTextTool{dispatcher: dispatcher}
}

// Name returns the tool name.
func (t *InputTextTool) Name() string {
	return "inputText"
}

// Description returns the tool description.
func (t *InputTextTool) Description() string {
	return "Enter text into the form control with the given numeric id from the current page snapshot. Replaces the control's current value and fires the page's input handlers. Returns a short confirmation, not a full page refresh."
}

// Schema returns the tool's parameter schema.
func (t *InputTextTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "integer",
				"description": "Numeric id of the input, textarea, or select to fill",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to enter into the control",
			},
		},
		[]string{"id", "text"},
	)
}

// IsLoopBreaking returns whether this tool ends the command.
func (t *InputTextTool) IsLoopBreaking() bool {
	return false
}

// Execute fills the control and returns a confirmation.
func (t *InputTextTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	id, err := tools.IntArg(args, "id")
	if err != nil {
		return "", err
	}
	text, err := tools.StringArg(args, "text")
	if err != nil {
		return "", err
	}
	return t.dispatcher.InputText(ctx, id, text)
}
