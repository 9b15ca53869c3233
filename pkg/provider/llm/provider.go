// Package llm is the narrow slice of a chat-completion API that CareerVani
// needs: one prompt in, one reply out.
//
// Regional-language translation and the LLM grammar checker both send a
// single instruction plus a single user turn, so there is no streaming and no
// tool calling. Implementations must be safe for concurrent use.
package llm

import "context"

// Message roles understood by every backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Format selects the shape of the reply.
type Format int

const (
	// FormatText asks for free text.
	FormatText Format = iota
	// FormatJSON asks for a single JSON object. Backends with a native JSON
	// mode enable it; the rest rely on the prompt.
	FormatJSON
)

// Message is one turn of the conversation.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a single completion call.
type CompletionRequest struct {
	// System is sent ahead of Messages as a system turn when non-empty.
	System string

	// Messages must not be empty.
	Messages []Message

	// Temperature in [0, 2]; zero keeps the backend default.
	Temperature float64

	// MaxTokens caps the reply; zero keeps the backend default.
	MaxTokens int

	Format Format
}

// Prompt builds a request with one system instruction and one user turn.
func Prompt(system, user string) CompletionRequest {
	return CompletionRequest{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// Usage is the token accounting reported by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is the assistant reply.
type CompletionResponse struct {
	Content string
	Usage   Usage

	// Model is the model that actually answered, when the backend reports it.
	Model string

	// Truncated is set when the reply stopped at the token limit.
	Truncated bool
}

// Provider is a chat-completion backend.
type Provider interface {
	// Complete blocks until the full reply arrives or ctx is done.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
