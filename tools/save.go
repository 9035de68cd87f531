// Save Tool - persists an analysis as pretty-printed JSON.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SaveAnalysisTool writes a structured analysis to disk.
type SaveAnalysisTool struct {
	BaseTool
	ws *Workspace
}

// NewSaveAnalysisTool creates a new save analysis tool.
func NewSaveAnalysisTool(ws *Workspace) *SaveAnalysisTool {
	return &SaveAnalysisTool{ws: ws}
}

// Metadata returns the tool metadata.
func (t *SaveAnalysisTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "save_analysis",
		Description: "Save a document analysis as pretty-printed JSON",
		Parameters: []ToolParameter{
			{Name: "filename", ParamType: "string", Description: "Name of the analyzed document", Required: true},
			{Name: "summary", ParamType: "string", Description: "Document summary", Required: true},
			{Name: "wordCount", ParamType: "integer", Description: "Word count of the document", Required: true},
			{Name: "sourceFile", ParamType: "string", Description: "Path of the source document", Required: true},
			{Name: "outputPath", ParamType: "string", Description: "Path to write the analysis JSON to", Required: true},
			{Name: "keyPoints", ParamType: "array", Description: "Key points extracted from the document", Required: false},
			{Name: "entities", ParamType: "array", Description: "Entities found in the document", Required: false},
			{Name: "topics", ParamType: "array", Description: "Topics found in the document", Required: false},
		},
	}
}

type saveAnalysisArgs struct {
	Filename   string   `json:"filename"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"keyPoints"`
	Entities   []string `json:"entities"`
	Topics     []string `json:"topics"`
	WordCount  int      `json:"wordCount"`
	SourceFile string   `json:"sourceFile"`
	OutputPath string   `json:"outputPath"`
}

// savedAnalysis is the persisted JSON shape.
type savedAnalysis struct {
	Filename    string   `json:"filename"`
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"keyPoints,omitempty"`
	Entities    []string `json:"entities,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	WordCount   int      `json:"wordCount"`
	SourceFile  string   `json:"sourceFile"`
	GeneratedAt string   `json:"generatedAt"`
}

func (a saveAnalysisArgs) validate() error {
	switch {
	case a.Filename == "":
		return fmt.Errorf("filename is required")
	case a.Summary == "":
		return fmt.Errorf("summary is required")
	case a.SourceFile == "":
		return fmt.Errorf("sourceFile is required")
	case a.OutputPath == "":
		return fmt.Errorf("outputPath is required")
	}
	return nil
}

// Validate validates the arguments.
func (t *SaveAnalysisTool) Validate(args json.RawMessage) error {
	var a saveAnalysisArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return a.validate()
}

// Execute writes the analysis to the output path.
func (t *SaveAnalysisTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a saveAnalysisArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if err := a.validate(); err != nil {
		return FailureResult(err), nil
	}

	saved := savedAnalysis{
		Filename:    a.Filename,
		Summary:     a.Summary,
		KeyPoints:   a.KeyPoints,
		Entities:    a.Entities,
		Topics:      a.Topics,
		WordCount:   a.WordCount,
		SourceFile:  a.SourceFile,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return FailureResult(fmt.Errorf("failed to encode analysis: %w", err)), nil
	}

	resolved := t.ws.Resolve(a.OutputPath)
	if dir := filepath.Dir(resolved); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return FailureResult(fmt.Errorf("failed to create directory: %w", err)), nil
		}
	}

	if err := os.WriteFile(resolved, data, 0644); err != nil {
		return FailureResult(fmt.Errorf("failed to write analysis: %w", err)), nil
	}

	return SuccessJSON(struct {
		SavedTo string `json:"savedTo"`
		Bytes   int    `json:"bytes"`
	}{SavedTo: resolved, Bytes: len(data)}), nil
}
