package llm

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestParseProviderType(t *testing.T) {
	cases := []struct {
		input string
		want  ProviderType
	}{
		{"openai", ProviderOpenAI},
		{"gpt", ProviderOpenAI},
		{"Anthropic", ProviderAnthropic},
		{"claude", ProviderAnthropic},
		{"deepseek", ProviderDeepSeek},
		{"GEMINI", ProviderGemini},
		{"google", ProviderGemini},
	}
	for _, tc := range cases {
		got, err := ParseProviderType(tc.input)
		if err != nil {
			t.Errorf("ParseProviderType(%q) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}

	if _, err := ParseProviderType("mistral"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestProviderDefaults(t *testing.T) {
	for _, p := range []ProviderType{ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek, ProviderGemini} {
		if p.DefaultModel() == "" {
			t.Errorf("%v has no default model", p)
		}
		if p.EnvVar() == "" {
			t.Errorf("%v has no API key env var", p)
		}
	}
}

func TestBuilderAppliesModel(t *testing.T) {
	provider, err := ProviderAnthropic.Model(ModelAnthropicClaudeSonnet4).APIKey("test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Model() != ModelAnthropicClaudeSonnet4 {
		t.Errorf("expected %q, got %q", ModelAnthropicClaudeSonnet4, provider.Model())
	}
	if provider.Name() != "anthropic" {
		t.Errorf("expected anthropic, got %q", provider.Name())
	}
}

func TestTokenUsageAdd(t *testing.T) {
	var total TokenUsage
	total.Add(&TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	total.Add(nil)
	total.Add(&TokenUsage{PromptTokens: 2, CompletionTokens: 3, TotalTokens: 5})

	if total.PromptTokens != 12 || total.CompletionTokens != 8 || total.TotalTokens != 20 {
		t.Errorf("unexpected totals: %+v", total)
	}
}

// Error messages from failed requests must never echo the API key.
func TestErrorsDoNotLeakAPIKey(t *testing.T) {
	const testKey = "sk-test-invalid-key-12345xyz"

	providers := []Provider{
		NewOpenAIProvider(testKey, ModelOpenAIGPT4oMini, 100, 0.7),
		NewAnthropicProvider(testKey, ModelAnthropicClaudeHaiku4, 100, 0.7),
		NewDeepSeekProvider(testKey, ModelDeepSeekV32, 100, 0.7),
		NewGeminiProvider(testKey, ModelGeminiFlash2, 100, 0.7),
	}

	for _, provider := range providers {
		t.Run(provider.Name(), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := provider.Chat(ctx, []ChatMessage{UserMessage("test")})
			if err == nil {
				t.Skip("request with invalid key unexpectedly succeeded")
			}
			if strings.Contains(err.Error(), testKey) {
				t.Errorf("%s error leaked API key: %v", provider.Name(), err)
			}
		})
	}
}

func TestToolCallErrorDoesNotLeakAPIKey(t *testing.T) {
	const testKey = "sk-test-invalid-key-12345xyz"
	provider := NewOpenAIProvider(testKey, ModelOpenAIGPT4oMini, 100, 0.7)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tools := []ToolDefinition{{
		Name:        "list_files",
		Description: "List files at a path",
		Parameters:  map[string]interface{}{"type": "object"},
	}}

	_, err := provider.ChatWithTools(ctx, []ChatMessage{UserMessage("test")}, tools)
	if err == nil {
		t.Skip("request with invalid key unexpectedly succeeded")
	}
	if strings.Contains(err.Error(), testKey) {
		t.Errorf("tool call error leaked API key: %v", err)
	}
}
