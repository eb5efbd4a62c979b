package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// toAnthropicMessages role-maps the remaining messages; stray instruction roles collapse to user
func toAnthropicMessages(p provider.Provider, messages []message.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		role := anthropic.MessageParamRoleUser
		switch p.MapRole(msg.Role) {
		case message.RoleAssistant, message.RoleModel:
			role = anthropic.MessageParamRoleAssistant
		}
		out = append(out, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)},
		})
	}
	return out
}
