package config

import (
	"os"
	"testing"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
	if settings.Agent.MaxSteps != 15 {
		t.Errorf("expected default max steps 15, got %d", settings.Agent.MaxSteps)
	}
	if settings.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", settings.Server.Port)
	}
	if settings.Server.BaseDir != "." {
		t.Errorf("expected default base dir '.', got %q", settings.Server.BaseDir)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewReadsServerEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DOCS_BASE_DIR", "/srv/docs")
	t.Setenv("AGENT_MAX_STEPS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	settings, err := New("anthropic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", settings.Server.Port)
	}
	if settings.Server.BaseDir != "/srv/docs" {
		t.Errorf("expected base dir /srv/docs, got %q", settings.Server.BaseDir)
	}
	if settings.Agent.MaxSteps != 5 {
		t.Errorf("expected max steps 5, got %d", settings.Agent.MaxSteps)
	}
	origins := settings.Server.CORSAllowedOrigins
	if len(origins) != 2 || origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", origins)
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestModelFor(t *testing.T) {
	model, err := ModelFor("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == "" {
		t.Error("expected non-empty model")
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	if len(providers) != 4 {
		t.Errorf("expected 4 supported providers, got %v", providers)
	}
}
