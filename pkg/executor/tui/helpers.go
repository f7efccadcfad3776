package tui

import (
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/entrhq/webpilot/pkg/types"
)

// resultJSON renders a result's data payload as indented JSON text.
func resultJSON(result *types.CommandResult) string {
	encoded, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		return "<unencodable result>"
	}
	return string(encoded)
}

// highlightJSON applies terminal syntax highlighting to a JSON payload,
// falling back to the plain text when highlighting fails.
func highlightJSON(source string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, source, "json", "terminal256", "monokai"); err != nil {
		return source
	}
	return b.String()
}
