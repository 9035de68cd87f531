// Agent configuration.

package agent

// DefaultMaxSteps caps the tool-calling loop. Each step is one LLM
// round trip, possibly followed by tool executions.
const DefaultMaxSteps = 15

const defaultSystemPrompt = `You are a document analysis assistant. You answer questions about documents in the user's workspace using the available tools.

Rules:
- Never invent file contents. Read or extract a document before describing, quoting or analyzing it.
- Use extract_text_content to obtain document text, then pass that text to analyze_document or search_document.
- Use list_files and detect_document_type to discover what is available before guessing at paths.
- When asked to save results, use save_analysis with the fields you actually computed.

When you have what you need, reply with a clear, self-contained final answer.`

// Config holds agent configuration.
type Config struct {
	// Name identifies the agent in logs and stored invocations.
	Name string

	// SystemPrompt guides the agent's behavior.
	SystemPrompt string

	// MaxSteps caps the number of LLM round trips per run.
	// Zero means DefaultMaxSteps.
	MaxSteps int
}

// DefaultConfig returns the document analyst configuration.
func DefaultConfig() Config {
	return Config{
		Name:         "docsmith",
		SystemPrompt: defaultSystemPrompt,
		MaxSteps:     DefaultMaxSteps,
	}
}

func (c Config) maxSteps() int {
	if c.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return c.MaxSteps
}

func (c Config) systemPrompt() string {
	if c.SystemPrompt == "" {
		return defaultSystemPrompt
	}
	return c.SystemPrompt
}
