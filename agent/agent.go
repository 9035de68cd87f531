// Tool-calling loop implementation.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	jsonutil "docsmith/internal/json"
	"docsmith/llm"
	"docsmith/model"
	"docsmith/tools"
)

// Agent answers prompts by looping between the LLM and the document
// tool set.
type Agent struct {
	config   Config
	provider llm.Provider
	registry *tools.Registry
	executor *tools.Executor
}

// New creates an agent over the given provider and tool registry.
func New(config Config, provider llm.Provider, registry *tools.Registry) *Agent {
	return &Agent{
		config:   config,
		provider: provider,
		registry: registry,
		executor: tools.NewDefaultExecutor(),
	}
}

// WithToolConfig overrides the tool execution configuration.
func (a *Agent) WithToolConfig(config tools.ToolConfig) *Agent {
	a.executor = tools.NewExecutor(config)
	return a
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.config.Name
}

// Run answers a single prompt. The returned Response carries the tool
// trace and usage totals even when an error is returned.
func (a *Agent) Run(ctx context.Context, prompt string) (Response, error) {
	start := time.Now()
	response := Response{}

	conversation := []llm.ChatMessage{
		llm.SystemMessage(a.config.systemPrompt()),
		llm.UserMessage(prompt),
	}
	definitions := Definitions(a.registry)

	maxSteps := a.config.maxSteps()
	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			response.DurationMs = uint64(time.Since(start).Milliseconds())
			return response, fmt.Errorf("run cancelled: %w", err)
		}

		completion, err := a.provider.ChatWithTools(ctx, conversation, definitions)
		if err != nil {
			response.DurationMs = uint64(time.Since(start).Milliseconds())
			return response, fmt.Errorf("llm call failed: %w", err)
		}
		response.LLMCalls++
		response.Usage.Add(completion.Usage)

		calls := completion.ToolCalls
		if len(calls) == 0 {
			// Some models emit the call as JSON text instead of a
			// native tool call. Recover it before treating the text
			// as the final answer.
			if call, ok := inlineToolCall(completion.Content); ok {
				calls = []llm.ToolCall{call}
			} else {
				response.Text = completion.Content
				response.DurationMs = uint64(time.Since(start).Milliseconds())
				return response, nil
			}
		}

		conversation = append(conversation, llm.ChatMessage{
			Role:      "assistant",
			Content:   completion.Content,
			ToolCalls: calls,
		})

		for _, call := range calls {
			record, payload := a.executeCall(ctx, call)
			response.ToolCalls = append(response.ToolCalls, record)
			conversation = append(conversation, llm.ToolMessage(call.ID, payload))
		}
	}

	response.DurationMs = uint64(time.Since(start).Milliseconds())
	return response, &StepLimitError{MaxSteps: maxSteps}
}

// executeCall runs one requested tool call and returns the trace record
// plus the serialized result to feed back to the model. Tool failures
// are not errors at this level: the structured failure payload goes
// back to the model so it can adjust.
func (a *Agent) executeCall(ctx context.Context, call llm.ToolCall) (model.ToolCall, string) {
	start := time.Now()
	record := model.ToolCall{
		Name:  call.Name,
		Input: string(call.Arguments),
	}

	tool, exists := a.registry.Get(call.Name)
	var result tools.ToolResult
	if !exists {
		result = tools.FailureResultf("unknown tool: %s", call.Name)
	} else {
		var err error
		result, err = a.executor.Execute(ctx, tool, call.Arguments)
		if err != nil {
			result = tools.FailureResultf("tool execution failed: %v", err)
		}
	}

	record.DurationMs = uint64(time.Since(start).Milliseconds())
	record.Success = result.Success()
	record.Output = result.Output
	if result.Error != nil {
		record.Error = result.Error.Error()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		payload = []byte(`{"success":false,"error":"failed to encode tool result"}`)
	}
	return record, string(payload)
}

// inlineToolCall tries to decode a tool call the model wrote as JSON
// text, e.g. {"tool": "list_files", "input": {"path": "."}}.
func inlineToolCall(content string) (llm.ToolCall, bool) {
	var action struct {
		Tool  string          `json:"tool"`
		Input json.RawMessage `json:"input"`
	}
	if err := jsonutil.ExtractJSONFromResponseWithType(content, &action); err != nil {
		return llm.ToolCall{}, false
	}
	if action.Tool == "" {
		return llm.ToolCall{}, false
	}
	input := action.Input
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	return llm.ToolCall{
		ID:        uuid.NewString(),
		Name:      action.Tool,
		Arguments: input,
	}, true
}
