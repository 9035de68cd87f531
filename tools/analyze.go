// Analysis Tools - content analysis and search.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"docsmith/analysis"
)

// AnalyzeDocumentTool runs plain-text analysis over supplied content.
type AnalyzeDocumentTool struct {
	BaseTool
}

// NewAnalyzeDocumentTool creates a new document analysis tool.
func NewAnalyzeDocumentTool() *AnalyzeDocumentTool {
	return &AnalyzeDocumentTool{}
}

// Metadata returns the tool metadata.
func (t *AnalyzeDocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "analyze_document",
		Description: "Analyze document text: summary, entities (names, emails, phones, URLs), topics and word count",
		Parameters: []ToolParameter{
			{Name: "content", ParamType: "string", Description: "Document text to analyze", Required: true},
			{Name: "mode", ParamType: "string", Description: "Analysis mode: full, summary_only, entities_only or topics_only (default: full)", Required: false},
		},
	}
}

type analyzeDocumentArgs struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// Validate validates the arguments.
func (t *AnalyzeDocumentTool) Validate(args json.RawMessage) error {
	var a analyzeDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Content == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if _, err := analysis.ParseMode(a.Mode); err != nil {
		return err
	}
	return nil
}

// Execute analyzes the content. Unexpected panics are converted into
// structured failures so the model can observe them.
func (t *AnalyzeDocumentTool) Execute(ctx context.Context, args json.RawMessage) (result ToolResult, execErr error) {
	defer func() {
		if r := recover(); r != nil {
			result = FailureResultf("analysis failed unexpectedly: %v", r)
			execErr = nil
		}
	}()

	var a analyzeDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Content == "" {
		return FailureResultf("content cannot be empty"), nil
	}

	mode, err := analysis.ParseMode(a.Mode)
	if err != nil {
		return FailureResult(err), nil
	}

	return SuccessJSON(analysis.Analyze(a.Content, mode)), nil
}

// SearchDocumentTool finds query occurrences with surrounding context.
type SearchDocumentTool struct {
	BaseTool
}

// NewSearchDocumentTool creates a new document search tool.
func NewSearchDocumentTool() *SearchDocumentTool {
	return &SearchDocumentTool{}
}

// Metadata returns the tool metadata.
func (t *SearchDocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "search_document",
		Description: "Search document text for a term (case-insensitive) and return matches with surrounding context",
		Parameters: []ToolParameter{
			{Name: "content", ParamType: "string", Description: "Document text to search", Required: true},
			{Name: "query", ParamType: "string", Description: "Term to search for", Required: true},
			{Name: "contextLength", ParamType: "integer", Description: "Characters of context on each side, 20-400 (default: 50)", Required: false},
		},
	}
}

type searchDocumentArgs struct {
	Content       string `json:"content"`
	Query         string `json:"query"`
	ContextLength int    `json:"contextLength"`
}

// Validate validates the arguments.
func (t *SearchDocumentTool) Validate(args json.RawMessage) error {
	var a searchDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Content == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if a.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// Execute searches the content.
func (t *SearchDocumentTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a searchDocumentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Content == "" {
		return FailureResultf("content cannot be empty"), nil
	}
	if a.Query == "" {
		return FailureResultf("query cannot be empty"), nil
	}

	matches, err := analysis.Search(a.Content, a.Query, a.ContextLength)
	if err != nil {
		return FailureResult(err), nil
	}
	if matches == nil {
		matches = []analysis.Match{}
	}

	return SuccessJSON(struct {
		Query      string           `json:"query"`
		MatchCount int              `json:"matchCount"`
		Matches    []analysis.Match `json:"matches"`
	}{Query: a.Query, MatchCount: len(matches), Matches: matches}), nil
}
