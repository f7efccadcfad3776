package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/page"
)

// NavigateTool loads a URL into the live page.
type NavigateTool struct {
	dispatcher *page.Dispatcher
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(dispatcher *page.Dispatcher) *NavigateTool {
	return &NavigateTool{dispatcher: dispatcher}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "navigateToUrl"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate the browser to a URL. Waits for the page to finish loading and returns the new page content with numbered interactive elements."
}

// Schema returns the tool's parameter schema.
func (t *NavigateTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Absolute URL to navigate to, including protocol (e.g. https://example.com)",
			},
		},
		[]string{"url"},
	)
}

// IsLoopBreaking returns whether this tool ends the command.
func (t *NavigateTool) IsLoopBreaking() bool {
	return false
}

// Execute performs the navigation and returns refreshed page context.
func (t *NavigateTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	url, err := tools.StringArg(args, "url")
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("url must not be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("url must be absolute and include a protocol, got %q", url)
	}
	return t.dispatcher.Navigate(ctx, url)
}
