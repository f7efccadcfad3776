package browser

import (
	"context"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/page"
)

// ClickTool clicks a numbered element on the current page.
type ClickTool struct {
	dispatcher *page.Dispatcher
}

// NewClickTool creates a new click tool.
func NewClickTool(dispatcher *page.Dispatcher) *ClickTool {
	return &ClickTool{dispatcher: dispatcher}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "clickElement"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click the interactive element with the given numeric id from the current page snapshot. Waits for any resulting navigation or update to settle and returns the refreshed page content."
}

// Schema returns the tool's parameter schema.
func (t *ClickTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "integer",
				"description": "Numeric id of the element to click, as shown in the page snapshot",
			},
		},
		[]string{"id"},
	)
}

// IsLoopBreaking returns whether this tool ends the command.
func (t *ClickTool) IsLoopBreaking() bool {
	return false
}

// Execute clicks the element and returns refreshed page context.
func (t *ClickTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	id, err := tools.IntArg(args, "id")
	if err != nil {
		return "", err
	}
	return t.dispatcher.Click(ctx, id)
}
