package provider

import (
	"strings"

	"github.com/fpt/go-promptlab/pkg/message"
)

// Provider ids
const (
	OpenAI = "openai"
	Claude = "claude"
	Gemini = "gemini"
)

var (
	openAIRoles = []message.Role{message.RoleUser, message.RoleAssistant, message.RoleDeveloper}
	claudeRoles = []message.Role{message.RoleUser, message.RoleAssistant}
	geminiRoles = []message.Role{message.RoleUser, message.RoleModel}
)

// OpenAIProvider describes the OpenAI chat-completions catalog
func OpenAIProvider() Provider {
	return Provider{
		ID:   OpenAI,
		Name: "OpenAI",
		Models: []Model{
			{ID: "gpt-4o", Label: "GPT-4o", SupportedRoles: openAIRoles},
			{ID: "gpt-4o-mini", Label: "GPT-4o Mini", SupportedRoles: openAIRoles},
			{ID: "gpt-4o-nano", Label: "GPT-4o Nano", SupportedRoles: openAIRoles},
			{ID: "gpt-5", Label: "GPT-5", SupportedRoles: openAIRoles},
			{ID: "gpt-5-mini", Label: "GPT-5 Mini", SupportedRoles: openAIRoles},
			{ID: "gpt-5-nano", Label: "GPT-5 Nano", SupportedRoles: openAIRoles},
		},
		// gpt-5 models reject the temperature field
		SupportsTemperature: func(modelID string) bool { return !strings.HasPrefix(modelID, "gpt-5") },
		APIKeyPlaceholder:   "sk-...",
		APIKeyLabel:         "OpenAI API Key",
		RoleMapping: map[message.Role]message.Role{
			message.RoleSystem: message.RoleDeveloper,
		},
		DefaultRole: message.RoleUser,
		EnvVar:      "OPENAI_API_KEY",
	}
}

// ClaudeProvider describes the Anthropic messages catalog
func ClaudeProvider() Provider {
	return Provider{
		ID:   Claude,
		Name: "Claude",
		Models: []Model{
			{ID: "claude-opus-4-1-20250805", Label: "Claude Opus 4.1", SupportedRoles: claudeRoles},
			{ID: "claude-opus-4-20250514", Label: "Claude Opus 4", SupportedRoles: claudeRoles},
			{ID: "claude-sonnet-4-20250514", Label: "Claude Sonnet 4", SupportedRoles: claudeRoles},
			{ID: "claude-3-7-sonnet-20250219", Label: "Claude Sonnet 3.7", SupportedRoles: claudeRoles},
		},
		SupportsTemperature: func(string) bool { return true },
		APIKeyPlaceholder:   "sk-ant-...",
		APIKeyLabel:         "Claude API Key",
		RoleMapping: map[message.Role]message.Role{
			message.RoleSystem:    message.RoleUser,
			message.RoleDeveloper: message.RoleUser,
		},
		DefaultRole: message.RoleUser,
		EnvVar:      "ANTHROPIC_API_KEY",
	}
}

// GeminiProvider describes the Google generative-language catalog
func GeminiProvider() Provider {
	return Provider{
		ID:   Gemini,
		Name: "Gemini",
		Models: []Model{
			{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", SupportedRoles: geminiRoles},
			{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", SupportedRoles: geminiRoles},
		},
		SupportsTemperature: func(string) bool { return true },
		APIKeyPlaceholder:   "AIza...",
		APIKeyLabel:         "Gemini API Key",
		RoleMapping: map[message.Role]message.Role{
			message.RoleAssistant: message.RoleModel,
			message.RoleSystem:    message.RoleUser,
			message.RoleDeveloper: message.RoleUser,
		},
		DefaultRole: message.RoleUser,
		EnvVar:      "GEMINI_API_KEY",
	}
}

var defaultRegistry = NewRegistry(OpenAIProvider(), ClaudeProvider(), GeminiProvider())

// Default returns the built-in registry: OpenAI, Claude, Gemini in that order
func Default() *Registry {
	return defaultRegistry
}
