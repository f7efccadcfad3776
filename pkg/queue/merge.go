package queue

import "github.com/entrhq/webpilot/pkg/types"

// mergeResult folds a retry attempt into the existing result in place: data
// payloads combine, token counters add, histories concatenate, and status
// and error are overwritten by the retry's outcome. The merge never creates
// a new entry, so the queue holds exactly one result per command line.
func mergeResult(existing *types.CommandResult, retry *types.CommandRecord) *types.CommandResult {
	existing.Data = mergeData(existing.Data, retry.Data)
	existing.Usage.Add(retry.Usage)
	existing.Status = retry.Status
	existing.Error = retry.Error

	if existing.History == nil {
		existing.History = retry.Clone()
		return existing
	}

	history := existing.History
	history.ToolCalls = append(history.ToolCalls, retry.ToolCalls...)
	history.ToolResults = append(history.ToolResults, retry.ToolResults...)
	history.AssistantResponses = append(history.AssistantResponses, retry.AssistantResponses...)
	history.Usage.Add(retry.Usage)
	history.Status = retry.Status
	history.Error = retry.Error
	history.Data = existing.Data
	history.CompletedAt = retry.CompletedAt
	return existing
}

// mergeData combines an original payload with a retry payload:
//
//	nil + x          -> x
//	x + nil          -> x
//	scalar + scalar  -> [original, retry]
//	array  + scalar  -> array with scalar appended
//	scalar + array   -> array with scalar prepended
//	array  + array   -> concatenation, original first
func mergeData(original, retry interface{}) interface{} {
	if original == nil {
		return retry
	}
	if retry == nil {
		return original
	}

	origArr, origIsArr := original.([]interface{})
	retryArr, retryIsArr := retry.([]interface{})

	switch {
	case origIsArr && retryIsArr:
		return append(append([]interface{}{}, origArr...), retryArr...)
	case origIsArr:
		return append(append([]interface{}{}, origArr...), retry)
	case retryIsArr:
		return append([]interface{}{original}, retryArr...)
	default:
		return []interface{}{original, retry}
	}
}
