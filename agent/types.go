// Package agent runs the tool-calling loop that answers document
// prompts: the model is offered the document tool set, requested calls
// are executed, and their results are fed back until the model produces
// a final text answer or the step cap is reached.
package agent

import (
	"docsmith/llm"
	"docsmith/model"
)

// Response is the outcome of one prompt run.
type Response struct {
	// Text is the model's final answer.
	Text string

	// ToolCalls is the ordered trace of tool invocations.
	ToolCalls []model.ToolCall

	// Usage is the accumulated token usage across all LLM calls.
	Usage llm.TokenUsage

	// LLMCalls is the number of LLM round trips made.
	LLMCalls int

	// DurationMs is the wall-clock duration of the run.
	DurationMs uint64
}

// StepLimitError reports a run that hit the step cap before the model
// produced a final answer.
type StepLimitError struct {
	MaxSteps int
}

func (e *StepLimitError) Error() string {
	return "no final answer after maximum steps"
}
