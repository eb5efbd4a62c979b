package domain

import (
	"context"
)

// Default maximum output tokens sent to providers that require a cap
const DefaultMaxOutputTokens = 4096

// ProviderClient adapts one scenario to a vendor API and normalizes the response
type ProviderClient interface {
	// Execute sends the scenario using the given credential.
	// Failures are *ProviderError or *ValidationError.
	Execute(ctx context.Context, scenario Scenario, credential string) (*Result, error)
}

// ClientConfig holds per-provider transport settings
type ClientConfig struct {
	// BaseURL overrides the vendor endpoint (proxies, tests); empty uses the SDK default
	BaseURL string
	// MaxTokens caps output tokens where the provider requires a cap (0 = default)
	MaxTokens int
}

// MaxOutputTokens returns the configured cap or the default
func (c ClientConfig) MaxOutputTokens() int {
	if c.MaxTokens <= 0 {
		return DefaultMaxOutputTokens
	}
	return c.MaxTokens
}

// TemperatureSupport reports whether a model accepts the temperature field
type TemperatureSupport interface {
	ModelSupportsTemperature(modelID string) bool
}
