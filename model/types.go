// Package model provides domain types shared across packages.
package model

// ToolCall records one tool invocation made while answering a prompt.
// Used for run traces, invocation history and analytics.
type ToolCall struct {
	Name       string `json:"name"`
	Input      string `json:"input"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	Success    bool   `json:"success"`
	DurationMs uint64 `json:"duration_ms"`
}

// InvocationStatus labels the outcome of a prompt run.
type InvocationStatus string

const (
	StatusCompleted InvocationStatus = "completed"
	StatusFailed    InvocationStatus = "failed"
	StatusStepLimit InvocationStatus = "step_limit"
)

// Invocation is a persisted record of one prompt run.
type Invocation struct {
	ID               string           `json:"id"`
	Prompt           string           `json:"prompt"`
	Response         string           `json:"response"`
	Status           InvocationStatus `json:"status"`
	LLMCalls         int              `json:"llm_calls"`
	PromptTokens     uint32           `json:"prompt_tokens"`
	CompletionTokens uint32           `json:"completion_tokens"`
	DurationMs       uint64           `json:"duration_ms"`
	CreatedAt        string           `json:"created_at"`
	ToolCalls        []ToolCall       `json:"tool_calls,omitempty"`
}
