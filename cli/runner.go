// Command execution for CLI commands.
//
// Information Hiding:
// - Provider and agent setup hidden
// - Server lifecycle hidden
// - Output formatting hidden

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docsmith/agent"
	"docsmith/config"
	"docsmith/llm"
	"docsmith/server"
	"docsmith/storage"
	"docsmith/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider    string
	MaxSteps    int
	ToolRetries uint32
	Verbose     bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxSteps:    agent.DefaultMaxSteps,
		ToolRetries: 3,
		Verbose:     false,
	}
}

const shutdownTimeout = 5 * time.Second

// Serve starts the HTTP document endpoint and blocks until the process
// receives an interrupt or the listener fails.
func Serve(ctx context.Context, opts Options) error {
	settings, provider, err := createProvider(opts.Provider)
	if err != nil {
		return err
	}

	// Each request gets its own workspace, registry, and agent, so one
	// request's change_directory never re-bases another.
	factory := func() (server.Invoker, error) {
		return newAgent(settings, provider, opts)
	}

	// A nil *SqliteStorage must stay a nil History interface, the router
	// treats nil as persistence disabled.
	var history server.History
	if settings.Server.DBPath != "" {
		store, err := storage.OpenSqlite(settings.Server.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		history = store
	}

	handler := server.NewRouter(factory, history, settings.Server.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", settings.Server.Port),
		Handler: handler,
		// Agent runs make multiple LLM round trips; the write timeout
		// has to cover the whole loop, not a single upstream call.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Listening on %s (provider: %s, model: %s)\n", srv.Addr, provider.Name(), provider.Model())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	case <-ctx.Done():
	}

	fmt.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// RunTask answers a single prompt on the command line and prints the
// result. With Verbose set it also prints the tool trace and usage.
func RunTask(ctx context.Context, prompt string, opts Options) error {
	settings, provider, err := createProvider(opts.Provider)
	if err != nil {
		return err
	}

	a, err := newAgent(settings, provider, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Running with %s (%s)...\n\n", provider.Name(), provider.Model())

	response, runErr := a.Run(ctx, prompt)

	if opts.Verbose {
		printToolTrace(response)
	}

	if runErr != nil {
		var limitErr *agent.StepLimitError
		if errors.As(runErr, &limitErr) {
			fmt.Fprintf(os.Stderr, "Error: no final answer after %d steps\n", limitErr.MaxSteps)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		}
		return runErr
	}

	fmt.Printf("%s\n", response.Text)
	if opts.Verbose {
		printUsage(response)
	}
	return nil
}

// ListTools prints every registered document tool.
func ListTools(verbose bool) error {
	ws, err := tools.NewWorkspace(".")
	if err != nil {
		return err
	}
	registry, err := tools.ForWorkspace(ws)
	if err != nil {
		return err
	}

	fmt.Println("Available tools:")
	fmt.Println()

	for _, meta := range registry.List() {
		fmt.Printf("  %s\n", meta.Name)
		fmt.Printf("    %s\n", meta.Description)

		if verbose && len(meta.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range meta.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
	return nil
}

// newAgent assembles a fresh workspace, registry, and agent rooted at
// the configured base directory.
func newAgent(settings config.Settings, provider llm.Provider, opts Options) (*agent.Agent, error) {
	ws, err := tools.NewWorkspace(settings.Server.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("invalid base directory: %w", err)
	}

	registry, err := tools.ForWorkspace(ws)
	if err != nil {
		return nil, err
	}

	agentConfig := agent.DefaultConfig()
	agentConfig.MaxSteps = settings.Agent.MaxSteps
	if opts.MaxSteps > 0 {
		agentConfig.MaxSteps = opts.MaxSteps
	}

	a := agent.New(agentConfig, provider, registry)
	if opts.ToolRetries > 0 {
		a = a.WithToolConfig(tools.ToolConfig{MaxRetries: opts.ToolRetries})
	}
	return a, nil
}

func createProvider(providerName string) (config.Settings, llm.Provider, error) {
	if providerName == "" {
		return config.Settings{}, nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return config.Settings{}, nil, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return config.Settings{}, nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return config.Settings{}, nil, err
	}

	provider, err := providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
	if err != nil {
		return config.Settings{}, nil, err
	}
	return settings, provider, nil
}

const maxTraceOutputLen = 400

func printToolTrace(response agent.Response) {
	if len(response.ToolCalls) == 0 {
		return
	}
	fmt.Println("--- Tool calls ---")
	for i, call := range response.ToolCalls {
		status := "ok"
		if !call.Success {
			status = "failed"
		}
		fmt.Printf("[%d] %s (%s, %dms)\n", i+1, call.Name, status, call.DurationMs)
		fmt.Printf("    Input: %s\n", truncateString(call.Input, maxTraceOutputLen))
		if call.Error != "" {
			fmt.Printf("    Error: %s\n", call.Error)
		} else if call.Output != "" {
			fmt.Printf("    Output: %s\n", truncateString(call.Output, maxTraceOutputLen))
		}
	}
	fmt.Println("------------------")
	fmt.Println()
}

func printUsage(response agent.Response) {
	fmt.Printf("\nLLM calls: %d\n", response.LLMCalls)
	fmt.Printf("Prompt tokens: %d\n", response.Usage.PromptTokens)
	fmt.Printf("Completion tokens: %d\n", response.Usage.CompletionTokens)
	fmt.Printf("Duration: %dms\n", response.DurationMs)
}

// truncateString truncates a string to maxLen runes, preserving UTF-8 boundaries.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
