package message

// TokenUsage is the canonical usage triple every provider response is translated into.
// CachedTokens is a subset of PromptTokens.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	CachedTokens     int `json:"cached_tokens"`
}

// NewTokenUsage builds a usage record, clamping negative counts to zero
func NewTokenUsage(prompt, completion, cached int) TokenUsage {
	return TokenUsage{
		PromptTokens:     max(prompt, 0),
		CompletionTokens: max(completion, 0),
		CachedTokens:     max(cached, 0),
	}
}

// TotalTokens returns prompt plus completion tokens
func (u TokenUsage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// UncachedPromptTokens returns the prompt tokens billed at the full input rate.
// A provider reporting more cached than prompt tokens yields 0.
func (u TokenUsage) UncachedPromptTokens() int {
	return max(u.PromptTokens-u.CachedTokens, 0)
}
