package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/fpt/go-promptlab/pkg/message"
)

// Field names providers use for the same counters, in lookup order
var (
	promptKeys     = []string{"prompt_tokens", "input_tokens", "promptTokenCount"}
	completionKeys = []string{"completion_tokens", "output_tokens", "candidatesTokenCount"}
	cachedKeys     = []string{"cached_tokens", "cachedContentTokenCount", "cache_read_input_tokens"}
	// Containers the usage object may be nested under
	usageContainers = []string{"usage", "usageMetadata", "usage_metadata"}
)

// NormalizeUsage translates a provider usage object into the canonical triple.
// Missing counters are 0.
func NormalizeUsage(fields map[string]any) message.TokenUsage {
	prompt := firstInt(fields, promptKeys)
	completion := firstInt(fields, completionKeys)
	cached := firstInt(fields, cachedKeys)

	// OpenAI nests cached tokens under prompt_tokens_details
	if details, ok := fields["prompt_tokens_details"].(map[string]any); ok && cached == 0 {
		cached = firstInt(details, []string{"cached_tokens"})
	}

	return message.NewTokenUsage(prompt, completion, cached)
}

// UsageFromRaw extracts usage from a raw provider response body.
// ok is false when the body carries no recognizable usage object.
func UsageFromRaw(raw json.RawMessage) (message.TokenUsage, bool) {
	if len(raw) == 0 {
		return message.TokenUsage{}, false
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return message.TokenUsage{}, false
	}

	for _, key := range usageContainers {
		if fields, ok := body[key].(map[string]any); ok {
			return NormalizeUsage(fields), true
		}
	}
	return message.TokenUsage{}, false
}

func firstInt(fields map[string]any, keys []string) int {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return 0
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		var i int
		_, err := fmt.Sscanf(n, "%d", &i)
		return i, err == nil
	default:
		return 0, false
	}
}
