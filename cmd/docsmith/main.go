// Package main provides the docsmith CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docsmith/cli"
)

var (
	// Global flags
	provider    string
	maxSteps    int
	toolRetries uint32
	verbose     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "docsmith",
		Short: "LLM-driven document analysis over HTTP and the command line",
		Long: `docsmith answers natural-language questions about documents.

A hosted LLM drives a fixed set of document tools: directory navigation,
file listing, type detection, text extraction, summarization, search,
and saving analysis results. Run it as an HTTP service (serve) or
one-shot from the command line (run).`,
	}

	defaults := cli.DefaultOptions()

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxSteps, "max-steps", "m", defaults.MaxSteps, "Maximum LLM round trips per prompt")
	rootCmd.PersistentFlags().Uint32Var(&toolRetries, "tool-retries", defaults.ToolRetries, "Maximum retries for tool execution")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider:    provider,
		MaxSteps:    maxSteps,
		ToolRetries: toolRetries,
		Verbose:     verbose,
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP document endpoint",
		Long: `Start the HTTP server exposing the document agent.

Endpoints:
  POST /api/document        Answer a prompt about a document
  GET  /api/invocations     List recent invocations (requires DB_PATH)
  GET  /api/invocations/:id Invocation detail with tool trace
  GET  /health              Liveness check

Configuration comes from the environment: SERVER_PORT, DOCS_BASE_DIR,
DB_PATH, CORS_ALLOWED_ORIGINS, and the provider's API key variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Serve(context.Background(), options())
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [prompt]",
		Short: "Answer a single document prompt",
		Long: `Answer a single prompt from the command line and print the result.

Example:
  docsmith run -p anthropic "Summarize reports/q3.pdf"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunTask(context.Background(), args[0], options())
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the document tools available to the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.ListTools(verbose)
		},
	}
}
