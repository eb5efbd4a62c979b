package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fpt/go-promptlab/pkg/client/handles"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// AnthropicClient adapts scenarios to the Claude messages API
type AnthropicClient struct {
	cache    *handles.Cache
	config   domain.ClientConfig
	provider provider.Provider
	logger   *logger.Logger
}

// NewAnthropicClient creates a client that builds its SDK handle through the shared cache
func NewAnthropicClient(cache *handles.Cache, config domain.ClientConfig) *AnthropicClient {
	if cache == nil {
		cache = handles.NewCache()
	}
	return &AnthropicClient{
		cache:    cache,
		config:   config,
		provider: provider.ClaudeProvider(),
		logger:   logger.NewComponentLogger("anthropic-client"),
	}
}

func (c *AnthropicClient) handle(credential string) (*anthropic.Client, error) {
	return handles.Get(c.cache, provider.Claude, credential, func() (*anthropic.Client, error) {
		opts := []option.RequestOption{
			option.WithAPIKey(credential),
			option.WithMaxRetries(0),
		}
		if c.config.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(c.config.BaseURL))
		}
		client := anthropic.NewClient(opts...)
		return &client, nil
	})
}

// Execute sends the scenario as one message-create request
func (c *AnthropicClient) Execute(ctx context.Context, scenario domain.Scenario, credential string) (*domain.Result, error) {
	system, messages := splitSystem(scenario.Messages)
	if len(messages) == 0 {
		return nil, domain.NewNoMessagesError()
	}

	client, err := c.handle(credential)
	if err != nil {
		return nil, domain.NewProviderError(provider.Claude, err)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(scenario.Model),
		MaxTokens:   int64(c.config.MaxOutputTokens()),
		Messages:    toAnthropicMessages(c.provider, messages),
		Temperature: anthropic.Float(scenario.Temperature),
	}
	if strings.TrimSpace(system) != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, toProviderError(err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content.WriteString(variant.Text)
		}
	}

	// Claude reports cache reads separately; they are not priced as cached here
	usage := message.NewTokenUsage(int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens), 0)

	c.logger.WithProvider(provider.Claude, scenario.Model).Debug("Anthropic API usage",
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
		"stop_reason", msg.StopReason)

	return &domain.Result{
		Content: content.String(),
		Usage:   &usage,
		Model:   string(msg.Model),
		Raw:     json.RawMessage(msg.RawJSON()),
	}, nil
}

// splitSystem extracts the first message as the system prompt when it carries instructions.
// The check looks at the unfiltered list so that the extracted message is exactly the first one.
func splitSystem(messages []message.Message) (string, []message.Message) {
	if len(messages) > 0 && messages[0].Role.IsInstruction() {
		return messages[0].Content, message.FilterBlank(messages[1:])
	}
	return "", message.FilterBlank(messages)
}

func toProviderError(err error) *domain.ProviderError {
	pe := domain.NewProviderError(provider.Claude, err)
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal([]byte(apiErr.RawJSON()), &body) == nil {
			pe.WithMessage(body.Error.Message)
		}
	}
	return pe
}
