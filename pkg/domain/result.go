package domain

import (
	"encoding/json"

	"github.com/fpt/go-promptlab/pkg/message"
)

// Result is the provider-independent shape every client normalizes its response into
type Result struct {
	Content string
	// Usage is nil when the provider reported no usage; Raw may still carry it
	Usage *message.TokenUsage
	// Model echoes the model the provider reports having used
	Model string
	Raw   json.RawMessage
}

// CostMetadata describes how a cost was priced
type CostMetadata struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	// PricedAs is the pricing entry actually used; differs from Model on fallback
	PricedAs string `json:"priced_as"`
	Tier     string `json:"tier"`
	Fallback bool   `json:"fallback"`
}

// Cost is a derived cost breakdown. Values are unrounded currency units.
type Cost struct {
	InputCost  float64 `json:"input_cost"`
	CachedCost float64 `json:"cached_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`

	// InputTokens counts uncached prompt tokens only
	InputTokens  int `json:"input_tokens"`
	CachedTokens int `json:"cached_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`

	Metadata CostMetadata `json:"metadata"`
}
