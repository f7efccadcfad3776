package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/page"
)

// ExtractLinkTool resolves numbered elements to absolute URLs without
// navigating.
type ExtractLinkTool struct {
	dispatcher *page.Dispatcher
}

// NewExtractLinkTool creates a new link-extraction tool.
func NewExtractLinkTool(dispatcher *page.Dispatcher) *ExtractLinkTool {
	return &ExtractLinkTool{dispatcher: dispatcher}
}

// Name returns the tool name.
func (t *ExtractLinkTool) Name() string {
	return "getAbsoluteUrlFromElement"
}

// Description returns the tool description.
func (t *ExtractLinkTool) Description() string {
	return "Resolve the absolute URL of one or more link elements from the current page snapshot without clicking them. Accepts a single numeric id or a list of ids and returns a JSON array of {id, label, url} entries."
}

// Schema returns the tool's parameter schema.
func (t *ExtractLinkTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"ids": map[string]interface{}{
				"description": "Numeric id of the link element, or an array of ids to resolve in one call",
				"oneOf": []interface{}{
					map[string]interface{}{"type": "integer"},
					map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "integer"},
					},
				},
			},
		},
		[]string{"ids"},
	)
}

// IsLoopBreaking returns whether this tool ends the command.
func (t *ExtractLinkTool) IsLoopBreaking() bool {
	return false
}

// Execute resolves the requested elements and returns the results as JSON.
func (t *ExtractLinkTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	ids, err := tools.IntListArg(args, "ids")
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("ids must contain at least one element id")
	}

	results, err := t.dispatcher.ExtractLinks(ctx, ids)
	if err != nil {
		return "", err
	}
	encoded, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encoding link results: %w", err)
	}
	return string(encoded), nil
}
