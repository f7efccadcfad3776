package browser

import (
	"context"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/page"
)

// GoBackTool navigates one step back in the browser history.
type GoBackTool struct {
	dispatcher *page.Dispatcher
}

// NewGoBackTool creates a new back-navigation tool.
func NewGoBackTool(dispatcher *page.Dispatcher) *GoBackTool {
	return &GoBackTool{dispatcher: dispatcher}
}

// Name returns the tool name.
func (t *GoBackTool) Name() string {
	return "goBack"
}

// Description returns the tool description.
func (t *GoBackTool) Description() string {
	return "Navigate back to the previous page in the browser history. Waits for the page to finish loading and returns the refreshed page content."
}

// Schema returns the tool's parameter schema.
func (t *GoBackTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{}, nil)
}

// IsLoopBreaking returns whether this tool ends the command.
func (t *GoBackTool) IsLoopBreaking() bool {
	return false
}

// Execute goes back and returns refreshed page context.
func (t *GoBackTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	return t.dispatcher.GoBack(ctx)
}
