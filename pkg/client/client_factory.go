package client

import (
	"fmt"

	"github.com/fpt/go-promptlab/pkg/client/anthropic"
	"github.com/fpt/go-promptlab/pkg/client/gemini"
	"github.com/fpt/go-promptlab/pkg/client/handles"
	"github.com/fpt/go-promptlab/pkg/client/openai"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// NewProviderClient creates the client variant for a provider id
func NewProviderClient(providerID string, cache *handles.Cache, config domain.ClientConfig) (domain.ProviderClient, error) {
	switch providerID {
	case provider.OpenAI:
		return openai.NewOpenAIClient(cache, config), nil
	case provider.Claude:
		return anthropic.NewAnthropicClient(cache, config), nil
	case provider.Gemini:
		return gemini.NewGeminiClient(cache, config), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerID)
	}
}

// NewClientSet builds one client per registered provider, all sharing the handle cache.
// Providers without a client variant are skipped.
func NewClientSet(registry *provider.Registry, cache *handles.Cache, configs map[string]domain.ClientConfig) map[string]domain.ProviderClient {
	clients := make(map[string]domain.ProviderClient)
	for _, p := range registry.Providers() {
		c, err := NewProviderClient(p.ID, cache, configs[p.ID])
		if err != nil {
			continue
		}
		clients[p.ID] = c
	}
	return clients
}
