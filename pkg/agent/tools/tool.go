// Package tools defines the tool-calling system: the Tool interface the
// execution loop dispatches against, the registry that advertises tool
// schemas to the model, and the done tool that carries the completion
// sentinel.
package tools

import (
	"context"
	"fmt"
)

// Tool represents a capability the model can invoke during command
// execution. Tools receive their arguments as a parsed JSON object; the
// execution loop handles argument-string parsing and turns malformed JSON
// into a per-call failure before dispatch.
type Tool interface {
	// Name returns the unique identifier for this tool (e.g. "ClickElement").
	Name() string

	// Description returns what this tool does, phrased for the model.
	Description() string

	// Schema returns the JSON schema object for this tool's parameters.
	Schema() map[string]interface{}

	// Execute runs the tool and returns a textual result for the model.
	// Errors are recovered by the loop into textual results so the model
	// can react; they never abort the command on their own.
	Execute(ctx context.Context, args map[string]interface{}) (string, error)

	// IsLoopBreaking indicates whether this tool's result terminates the
	// command (the done tool).
	IsLoopBreaking() bool
}

// BaseToolSchema creates the common JSON schema structure for a tool. Every
// tool additionally requires a reasonForAction justification alongside its
// functional parameters.
func BaseToolSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	props := make(map[string]interface{}, len(properties)+1)
	for k, v := range properties {
		props[k] = v
	}
	props["reasonForAction"] = map[string]interface{}{
		"type":        "string",
		"description": "Why this action is the right next step for the command.",
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   append(append([]string{}, required...), "reasonForAction"),
	}
}

// StringArg extracts a required string argument.
func StringArg(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

// IntArg extracts a required integer argument. JSON numbers arrive as
// float64.
func IntArg(args map[string]interface{}, key string) (int, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}
	return toInt(key, raw)
}

// IntListArg extracts an argument that may be a single integer or a list of
// integers, normalizing to a slice.
func IntListArg(args map[string]interface{}, key string) ([]int, error) {
	raw, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}

	if list, ok := raw.([]interface{}); ok {
		ids := make([]int, 0, len(list))
		for _, item := range list {
			id, err := toInt(key, item)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	}

	id, err := toInt(key, raw)
	if err != nil {
		return nil, err
	}
	return []int{id}, nil
}

func toInt(key string, raw interface{}) (int, error) {
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
}
