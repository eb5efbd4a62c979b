package gemini

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/genai"

	"github.com/fpt/go-promptlab/pkg/client/handles"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// GeminiClient adapts scenarios to the generative-chat API
type GeminiClient struct {
	cache    *handles.Cache
	config   domain.ClientConfig
	provider provider.Provider
	logger   *logger.Logger
}

// NewGeminiClient creates a client that builds its SDK handle through the shared cache
func NewGeminiClient(cache *handles.Cache, config domain.ClientConfig) *GeminiClient {
	if cache == nil {
		cache = handles.NewCache()
	}
	return &GeminiClient{
		cache:    cache,
		config:   config,
		provider: provider.GeminiProvider(),
		logger:   logger.NewComponentLogger("gemini-client"),
	}
}

func (c *GeminiClient) handle(ctx context.Context, credential string) (*genai.Client, error) {
	return handles.Get(c.cache, provider.Gemini, credential, func() (*genai.Client, error) {
		cfg := &genai.ClientConfig{
			APIKey:  credential,
			Backend: genai.BackendGeminiAPI,
		}
		if c.config.BaseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.config.BaseURL}
		}
		// The handle outlives this request
		return genai.NewClient(context.WithoutCancel(ctx), cfg)
	})
}

// Execute sends all but the last message as history and the last one as the new turn
func (c *GeminiClient) Execute(ctx context.Context, scenario domain.Scenario, credential string) (*domain.Result, error) {
	history, turn, err := splitTurn(c.provider, message.FilterBlank(scenario.Messages))
	if err != nil {
		return nil, err
	}

	client, err := c.handle(ctx, credential)
	if err != nil {
		return nil, domain.NewProviderError(provider.Gemini, err)
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(scenario.Temperature)),
		MaxOutputTokens: int32(c.config.MaxOutputTokens()),
	}

	resp, err := client.Models.GenerateContent(ctx, scenario.Model, append(history, turn), config)
	if err != nil {
		return nil, toProviderError(err)
	}

	result := &domain.Result{
		Content: resp.Text(),
		Model:   resp.ModelVersion,
	}
	if raw, err := json.Marshal(resp); err == nil {
		result.Raw = raw
	}
	if resp.UsageMetadata != nil {
		usage := message.NewTokenUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.CachedContentTokenCount),
		)
		result.Usage = &usage

		c.logger.WithProvider(provider.Gemini, scenario.Model).Debug("Gemini API usage",
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"cached_tokens", resp.UsageMetadata.CachedContentTokenCount)
	}

	return result, nil
}

func toProviderError(err error) *domain.ProviderError {
	pe := domain.NewProviderError(provider.Gemini, err)
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		pe.WithMessage(apiErr.Message)
	}
	return pe
}
