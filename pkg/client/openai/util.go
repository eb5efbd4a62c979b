package openai

import (
	"github.com/openai/openai-go/v2"

	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// nativeRole maps an agnostic role into the chat-completions vocabulary
func nativeRole(p provider.Provider, role message.Role) message.Role {
	mapped := p.MapRole(role)
	switch mapped {
	case message.RoleUser, message.RoleAssistant, message.RoleDeveloper, message.RoleSystem:
		return mapped
	case message.RoleModel:
		return message.RoleAssistant
	default:
		return p.DefaultRole
	}
}

// toOpenAIMessages converts a filtered message list into a flat list of native messages
func toOpenAIMessages(p provider.Provider, messages []message.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch nativeRole(p, msg.Role) {
		case message.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case message.RoleDeveloper:
			out = append(out, openai.DeveloperMessage(msg.Content))
		case message.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
