package message

import "strings"

// Role is the speaker tag on a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	// RoleModel is Gemini's native name for the assistant turn
	RoleModel Role = "model"
)

// IsInstruction reports whether the role carries system/developer instructions
func (r Role) IsInstruction() bool {
	return r == RoleSystem || r == RoleDeveloper
}

// Message is a provider-agnostic chat message
type Message struct {
	Role    Role   `json:"role" yaml:"role" toml:"role"`
	Content string `json:"content" yaml:"content" toml:"content"`
}

// NewMessage creates a message with the given role and content
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// IsBlank reports whether the content is empty or whitespace only
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}

// FilterBlank returns the messages whose content is not blank, preserving order
func FilterBlank(messages []Message) []Message {
	filtered := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.IsBlank() {
			continue
		}
		filtered = append(filtered, msg)
	}
	return filtered
}

// Clone returns a copy of the slice so callers can mutate it freely
func Clone(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
