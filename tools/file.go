// File Tools - reading, type detection and text extraction.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"docsmith/document"
)

// ReadFileTool returns raw file contents.
type ReadFileTool struct {
	BaseTool
	ws *Workspace
}

// NewReadFileTool creates a new read file tool.
func NewReadFileTool(ws *Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

// Metadata returns the tool metadata.
func (t *ReadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_file",
		Description: "Read the raw text contents of a file",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Path to the file to read", Required: true},
		},
	}
}

type readFileArgs struct {
	Path string `json:"path"`
}

// Validate validates the arguments.
func (t *ReadFileTool) Validate(args json.RawMessage) error {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute reads the file.
func (t *ReadFileTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a readFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}

	resolved := t.ws.Resolve(a.Path)

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return FailureResultf("file does not exist: %s", a.Path), nil
	}
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read file metadata: %w", err)), nil
	}
	if info.IsDir() {
		return FailureResultf("%s is a directory, not a file", a.Path), nil
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to read file: %w", err)), nil
	}

	return SuccessResult(string(content)), nil
}

// DetectDocumentTypeTool maps a file to a document type label with stat info.
type DetectDocumentTypeTool struct {
	BaseTool
	ws *Workspace
}

// NewDetectDocumentTypeTool creates a new document type detection tool.
func NewDetectDocumentTypeTool(ws *Workspace) *DetectDocumentTypeTool {
	return &DetectDocumentTypeTool{ws: ws}
}

// Metadata returns the tool metadata.
func (t *DetectDocumentTypeTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "detect_document_type",
		Description: "Detect a file's document type from its extension, with size and modification time",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Path to the file to inspect", Required: true},
		},
	}
}

type detectDocumentTypeArgs struct {
	Path string `json:"path"`
}

// Validate validates the arguments.
func (t *DetectDocumentTypeTool) Validate(args json.RawMessage) error {
	var a detectDocumentTypeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute detects the document type.
func (t *DetectDocumentTypeTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a detectDocumentTypeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}

	if blockedPath(a.Path) {
		return FailureResultf("access to '%s' is not allowed", a.Path), nil
	}

	resolved := t.ws.Resolve(a.Path)
	info, err := os.Stat(resolved)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to stat file: %w", err)), nil
	}

	return SuccessJSON(struct {
		Path         string        `json:"path"`
		DocumentType document.Type `json:"documentType"`
		SizeBytes    int64         `json:"sizeBytes"`
		ModifiedAt   string        `json:"modifiedAt"`
	}{
		Path:         resolved,
		DocumentType: document.DetectType(resolved),
		SizeBytes:    info.Size(),
		ModifiedAt:   info.ModTime().UTC().Format(time.RFC3339),
	}), nil
}

// ExtractTextTool extracts plain text from a document by type.
type ExtractTextTool struct {
	BaseTool
	ws *Workspace
}

// NewExtractTextTool creates a new text extraction tool.
func NewExtractTextTool(ws *Workspace) *ExtractTextTool {
	return &ExtractTextTool{ws: ws}
}

// Metadata returns the tool metadata.
func (t *ExtractTextTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "extract_text_content",
		Description: "Extract plain text from a document (PDF, JSON, CSV, HTML or raw text) with word count",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Path to the document to extract", Required: true},
		},
	}
}

type extractTextArgs struct {
	Path string `json:"path"`
}

// Validate validates the arguments.
func (t *ExtractTextTool) Validate(args json.RawMessage) error {
	var a extractTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute extracts text content from the document.
func (t *ExtractTextTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a extractTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}

	if blockedPath(a.Path) {
		return FailureResultf("access to '%s' is not allowed", a.Path), nil
	}

	extraction, err := document.ExtractText(t.ws.Resolve(a.Path))
	if err != nil {
		return FailureResult(err), nil
	}

	return SuccessJSON(extraction), nil
}
