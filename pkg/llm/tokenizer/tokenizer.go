// Package tokenizer provides client-side token counting for prompt-size
// estimation. Budget enforcement uses the API-reported usage; these counts
// feed the live record and logs so the operator can see how large the
// transcript has grown before the next round-trip is spent.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/webpilot/pkg/types"
)

// defaultEncoding covers the gpt-4 family and most OpenAI-compatible models.
const defaultEncoding = "cl100k_base"

// perMessageOverhead approximates the framing tokens the chat format adds
// around each message.
const perMessageOverhead = 4

// Tokenizer counts tokens using a tiktoken encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// New creates a tokenizer with the default encoding.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", defaultEncoding, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the token count of a single string.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessagesTokens estimates the token count of a transcript, including
// tool-call argument payloads and per-message framing overhead.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += perMessageOverhead
		total += t.CountTokens(msg.Content)
		for _, tc := range msg.ToolCalls {
			total += t.CountTokens(tc.Name)
			total += t.CountTokens(tc.Arguments)
		}
	}
	return total
}
