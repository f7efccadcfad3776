package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/webpilot/pkg/logging"
)

const doneDescription = `Signal that the command is fully complete and return the extracted data.
Call this exactly once, as the final tool call, when every part of the command has been carried out.
The data argument must contain the information the command asked for. For extraction commands this is
the extracted content (an object or an array of objects). For pure navigation or interaction commands
a short confirmation string is enough. Never call done with empty data while page content relevant to
the command is still unread.`

// completionPayload is the sentinel the execution loop watches for in
// tool results to terminate the session.
type completionPayload struct {
	CommandComplete bool        `json:"command_complete"`
	Data            interface{} `json:"data"`
}

// Done is the loop-breaking tool the model calls to finish a command
// and hand back its result data.
type Done struct {
	log *logging.Logger
}

// NewDone creates the completion tool.
func NewDone() *Done {
	return &Done{}
}

// WithLogger routes validation warnings to the session log.
func (d *Done) WithLogger(log *logging.Logger) *Done {
	d.log = log
	return d
}

// Name returns the tool identifier.
func (d *Done) Name() string {
	return "done"
}

// Description returns the usage guidance shown to the model.
func (d *Done) Description() string {
	return doneDescription
}

// Schema declares the completion arguments.
func (d *Done) Schema() map[string]interface{} {
	return BaseToolSchema(map[string]interface{}{
		"data": map[string]interface{}{
			"description": "The result of the command: extracted content, or a short confirmation for action-only commands. May be any JSON value.",
		},
	}, []string{"data"})
}

// IsLoopBreaking reports that this tool terminates the session.
func (d *Done) IsLoopBreaking() bool {
	return true
}

// Execute validates the result data and emits the completion sentinel.
func (d *Done) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	data, ok := args["data"]
	if !ok || data == nil {
		return "", errors.New("done requires a non-empty data argument describing the command result")
	}

	// Models often double-encode structured results as a JSON string.
	if s, isString := data.(string); isString {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			var decoded interface{}
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				data = decoded
			}
		}
	}

	// An empty array is accepted as a legitimate "nothing matched" result,
	// but worth flagging: it usually means the model called done too early.
	if arr, isArray := data.([]interface{}); isArray && len(arr) == 0 {
		d.warnf("done called with an empty data array")
	}

	payload, err := json.Marshal(completionPayload{CommandComplete: true, Data: data})
	if err != nil {
		return "", fmt.Errorf("encoding completion data: %w", err)
	}
	return string(payload), nil
}

func (d *Done) warnf(format string, v ...interface{}) {
	if d.log != nil {
		d.log.Warnf(format, v...)
	}
}

// ParseCompletion inspects a tool result for the completion sentinel.
// It returns the result data and true when the content is a completion
// payload.
func ParseCompletion(content string) (interface{}, bool) {
	var payload completionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, false
	}
	if !payload.CommandComplete {
		return nil, false
	}
	return payload.Data, true
}
