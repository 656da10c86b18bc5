// Package chat holds the transcript model shared by the controller, the
// backend gateway and the renderer.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/csheth/papertalk/internal/arxiv"
)

// Role identifies who authored a message. The backend expects "human"
// rather than "user" for the person typing.
type Role string

const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// FallbackText replaces an assistant reply whenever a chat turn fails.
const FallbackText = "I'm sorry, I encountered an error while processing your request."

// ErrInvalidMessage is returned by Decode when a payload is not a usable message.
var ErrInvalidMessage = errors.New("chat: invalid message")

// Message is one transcript entry. Content is markdown.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHuman, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Human wraps user input.
func Human(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// Fallback is the fixed apology used when the backend cannot answer.
func Fallback() Message {
	return Message{Role: RoleAssistant, Content: FallbackText}
}

// Greeting opens a discussion about p.
func Greeting(p arxiv.Paper) Message {
	return Message{
		Role:    RoleAssistant,
		Content: fmt.Sprintf("**Great! Let's discuss the paper titled \"%s\"**.\n\n\n **Here is its summary:**  %s", p.Title, p.Summary),
	}
}

// SwitchNotice records that the discussion moved on to p.
func SwitchNotice(p arxiv.Paper) Message {
	return Message{
		Role:    RoleSystem,
		Content: fmt.Sprintf("Switching discussion to paper: \"%s\".\n\n\nHere is its summary: %s", p.Title, p.Summary),
	}
}

// Decode parses a backend reply and rejects anything that does not look
// like a message: unknown roles, missing content or a non-object body.
func Decode(data []byte) (Message, error) {
	var raw struct {
		Role    *string `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if raw.Role == nil || raw.Content == nil {
		return Message{}, fmt.Errorf("%w: role and content are required", ErrInvalidMessage)
	}
	role := Role(strings.TrimSpace(*raw.Role))
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, *raw.Role)
	}
	return Message{Role: role, Content: *raw.Content}, nil
}

// Clone copies a transcript so callers can hand it to another goroutine.
func Clone(messages []Message) []Message {
	if messages == nil {
		return nil
	}
	return append([]Message(nil), messages...)
}
