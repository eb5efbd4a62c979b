package gemini

import (
	"google.golang.org/genai"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
)

// nativeRole maps an agnostic role to user or model
func nativeRole(p provider.Provider, role message.Role) genai.Role {
	switch p.MapRole(role) {
	case message.RoleModel, message.RoleAssistant:
		return genai.RoleModel
	default:
		return genai.RoleUser
	}
}

// splitTurn turns a filtered message list into ordered history plus the new user turn
func splitTurn(p provider.Provider, messages []message.Message) ([]*genai.Content, *genai.Content, error) {
	if len(messages) == 0 {
		return nil, nil, domain.NewNoMessagesError()
	}

	last := len(messages) - 1
	history := make([]*genai.Content, 0, last+1)
	for _, msg := range messages[:last] {
		history = append(history, genai.NewContentFromText(msg.Content, nativeRole(p, msg.Role)))
	}
	turn := genai.NewContentFromText(messages[last].Content, genai.RoleUser)
	return history, turn, nil
}
