package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoneExecuteEmitsSentinel(t *testing.T) {
	done := NewDone()

	result, err := done.Execute(context.Background(), map[string]interface{}{
		"data": "Example Title",
	})
	require.NoError(t, err)

	data, ok := ParseCompletion(result)
	require.True(t, ok)
	assert.Equal(t, "Example Title", data)
}

func TestDoneExecuteStructuredData(t *testing.T) {
	done := NewDone()

	result, err := done.Execute(context.Background(), map[string]interface{}{
		"data": map[string]interface{}{
			"titles": []interface{}{"First", "Second"},
		},
	})
	require.NoError(t, err)

	data, ok := ParseCompletion(result)
	require.True(t, ok)
	payload, ok := data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"First", "Second"}, payload["titles"])
}

func TestDoneExecuteReparsesDoubleEncodedJSON(t *testing.T) {
	done := NewDone()

	result, err := done.Execute(context.Background(), map[string]interface{}{
		"data": `{"title": "Example"}`,
	})
	require.NoError(t, err)

	data, ok := ParseCompletion(result)
	require.True(t, ok)
	payload, ok := data.(map[string]interface{})
	require.True(t, ok, "JSON-string data should be decoded into a structured value")
	assert.Equal(t, "Example", payload["title"])
}

func TestDoneExecuteKeepsPlainStrings(t *testing.T) {
	done := NewDone()

	result, err := done.Execute(context.Background(), map[string]interface{}{
		"data": "navigation confirmed",
	})
	require.NoError(t, err)

	data, _ := ParseCompletion(result)
	assert.Equal(t, "navigation confirmed", data)
}

func TestDoneExecuteRejectsMissingData(t *testing.T) {
	done := NewDone()

	_, err := done.Execute(context.Background(), map[string]interface{}{})
	assert.ErrorContains(t, err, "non-empty data")

	_, err = done.Execute(context.Background(), map[string]interface{}{"data": nil})
	assert.ErrorContains(t, err, "non-empty data")
}

func TestDoneExecuteAcceptsEmptyArray(t *testing.T) {
	// An empty list is a valid "nothing matched" result. Both forms of
	// emptiness complete the command rather than erroring.
	for _, data := range []interface{}{[]interface{}{}, "[]"} {
		result, err := NewDone().Execute(context.Background(), map[string]interface{}{"data": data})
		require.NoError(t, err)

		parsed, ok := ParseCompletion(result)
		require.True(t, ok)
		assert.Equal(t, []interface{}{}, parsed)
	}
}

func TestDoneExecuteAcceptsEmptyString(t *testing.T) {
	result, err := NewDone().Execute(context.Background(), map[string]interface{}{"data": ""})
	require.NoError(t, err)

	parsed, ok := ParseCompletion(result)
	require.True(t, ok)
	assert.Equal(t, "", parsed)
}

func TestDoneIsLoopBreaking(t *testing.T) {
	assert.True(t, NewDone().IsLoopBreaking())
	assert.Equal(t, "done", NewDone().Name())
}

func TestParseCompletionRejectsOrdinaryResults(t *testing.T) {
	_, ok := ParseCompletion("Clicked element 3")
	assert.False(t, ok)

	_, ok = ParseCompletion(`{"command_complete": false, "data": "x"}`)
	assert.False(t, ok)

	_, ok = ParseCompletion(`{"some": "json"}`)
	assert.False(t, ok)
}
