package core

import "time"

// Conversation roles. The router only ever appends user, assistant and system
// messages; tool results live in the conversation context, not the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message is one entry in a conversation transcript. After being appended it
// should be treated as immutable.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage constructs a message with a generated ID and UTC timestamp.
func NewMessage(role, text string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage is a convenience wrapper for a user-authored message.
func NewUserMessage(text string) Message { return NewMessage(RoleUser, text) }

// NewAssistantMessage is a convenience wrapper for an assistant message.
func NewAssistantMessage(text string) Message { return NewMessage(RoleAssistant, text) }

// NewSystemMessage is a convenience wrapper for a system instruction message.
func NewSystemMessage(text string) Message { return NewMessage(RoleSystem, text) }
