package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/fpt/go-promptlab/pkg/client/handles"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// OpenAIClient adapts scenarios to the chat-completions API
type OpenAIClient struct {
	cache    *handles.Cache
	config   domain.ClientConfig
	provider provider.Provider
	logger   *logger.Logger
}

// NewOpenAIClient creates a client that builds its SDK handle through the shared cache
func NewOpenAIClient(cache *handles.Cache, config domain.ClientConfig) *OpenAIClient {
	if cache == nil {
		cache = handles.NewCache()
	}
	return &OpenAIClient{
		cache:    cache,
		config:   config,
		provider: provider.OpenAIProvider(),
		logger:   logger.NewComponentLogger("openai-client"),
	}
}

func (c *OpenAIClient) handle(credential string) (*openai.Client, error) {
	return handles.Get(c.cache, provider.OpenAI, credential, func() (*openai.Client, error) {
		opts := []option.RequestOption{
			option.WithAPIKey(credential),
			option.WithMaxRetries(0),
		}
		// Support custom base URL (proxies, Azure OpenAI, tests)
		if c.config.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(c.config.BaseURL))
		}
		client := openai.NewClient(opts...)
		return &client, nil
	})
}

// Execute sends the scenario as one chat completion
func (c *OpenAIClient) Execute(ctx context.Context, scenario domain.Scenario, credential string) (*domain.Result, error) {
	messages := message.FilterBlank(scenario.Messages)
	if len(messages) == 0 {
		return nil, domain.NewNoMessagesError()
	}

	client, err := c.handle(credential)
	if err != nil {
		return nil, domain.NewProviderError(provider.OpenAI, err)
	}

	params := buildParams(c.provider, scenario.Model, scenario.Temperature, messages)

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, toProviderError(err)
	}

	result := &domain.Result{
		Model: completion.Model,
		Raw:   json.RawMessage(completion.RawJSON()),
	}
	if len(completion.Choices) > 0 {
		result.Content = completion.Choices[0].Message.Content
	}
	if completion.Usage.PromptTokens > 0 || completion.Usage.CompletionTokens > 0 {
		usage := message.NewTokenUsage(
			int(completion.Usage.PromptTokens),
			int(completion.Usage.CompletionTokens),
			int(completion.Usage.PromptTokensDetails.CachedTokens),
		)
		result.Usage = &usage
	}

	c.logger.WithProvider(provider.OpenAI, scenario.Model).Debug("OpenAI API usage",
		"input_tokens", completion.Usage.PromptTokens,
		"output_tokens", completion.Usage.CompletionTokens,
		"cached_tokens", completion.Usage.PromptTokensDetails.CachedTokens)

	return result, nil
}

// buildParams constructs the request. Temperature is omitted entirely for models that reject it.
func buildParams(p provider.Provider, model string, temperature float64, messages []message.Message) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: toOpenAIMessages(p, messages),
		Model:    shared.ChatModel(model),
	}
	if p.SupportsTemperature(model) {
		params.Temperature = openai.Float(temperature)
	}
	return params
}

func toProviderError(err error) *domain.ProviderError {
	pe := domain.NewProviderError(provider.OpenAI, err)
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe.WithMessage(apiErr.Message)
	}
	return pe
}
