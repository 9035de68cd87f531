// Package llm abstracts hosted model APIs behind a single Provider
// interface. Each implementation hides its SDK's client setup, message
// conversion and tool-call plumbing.
package llm

import (
	"context"
)

// Provider is a hosted LLM backend capable of chat completions and
// native tool calling.
type Provider interface {
	// Name returns the provider name, for logging.
	Name() string

	// Model returns the configured model identifier.
	Model() string

	// Chat sends a plain chat completion request.
	Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error)

	// ChatWithTools sends a chat completion request with tool
	// definitions. The model may answer with tool calls in
	// LLMResponse.ToolCalls instead of (or alongside) text.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (LLMResponse, error)

	// StreamChat streams a completion, sending text chunks to the
	// channel. Token usage is returned after the stream ends, when the
	// provider reports it.
	StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error)
}
