package llm

import "context"

// Role values follow the chat-completions convention.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is a text-completion backend. Implementations return the raw
// assistant text; parsing is the caller's concern.
type Completer interface {
	Complete(ctx context.Context, messages []Message, model string) (string, error)
}
