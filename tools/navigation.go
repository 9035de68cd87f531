// Navigation Tools - directory change and listing.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// ChangeDirectoryTool moves the workspace base directory.
type ChangeDirectoryTool struct {
	BaseTool
	ws *Workspace
}

// NewChangeDirectoryTool creates a new change directory tool.
func NewChangeDirectoryTool(ws *Workspace) *ChangeDirectoryTool {
	return &ChangeDirectoryTool{ws: ws}
}

// Metadata returns the tool metadata.
func (t *ChangeDirectoryTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "change_directory",
		Description: "Change the current working directory for subsequent file operations",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory path to change to", Required: true},
		},
	}
}

type changeDirectoryArgs struct {
	Path string `json:"path"`
}

// Validate validates the arguments.
func (t *ChangeDirectoryTool) Validate(args json.RawMessage) error {
	var a changeDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

// Execute changes the workspace base directory.
func (t *ChangeDirectoryTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a changeDirectoryArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if a.Path == "" {
		return FailureResultf("path cannot be empty"), nil
	}

	resolved, err := t.ws.ChangeDir(a.Path)
	if err != nil {
		return FailureResult(err), nil
	}

	return SuccessJSON(struct {
		CurrentDirectory string `json:"currentDirectory"`
	}{CurrentDirectory: resolved}), nil
}

// ListFilesTool lists non-recursive directory entries.
type ListFilesTool struct {
	BaseTool
	ws *Workspace
}

// NewListFilesTool creates a new list files tool.
func NewListFilesTool(ws *Workspace) *ListFilesTool {
	return &ListFilesTool{ws: ws}
}

// Metadata returns the tool metadata.
func (t *ListFilesTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "list_files",
		Description: "List files and directories at a path (non-recursive). Defaults to the current directory.",
		Parameters: []ToolParameter{
			{Name: "path", ParamType: "string", Description: "Directory path to list (default: current directory)", Required: false},
		},
	}
}

type listFilesArgs struct {
	Path string `json:"path"`
}

type fileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
}

// Execute lists the directory entries.
func (t *ListFilesTool) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var a listFilesArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
		}
	}
	if a.Path == "" {
		a.Path = "."
	}

	// Refused before any filesystem access.
	if blockedPath(a.Path) {
		return FailureResultf("access to '%s' is not allowed", a.Path), nil
	}

	resolved := t.ws.Resolve(a.Path)
	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		return FailureResult(fmt.Errorf("failed to list directory: %w", err)), nil
	}

	entries := make([]fileEntry, 0, len(dirEntries))
	for _, e := range dirEntries {
		entry := fileEntry{Name: e.Name(), Type: "file"}
		if e.IsDir() {
			entry.Type = "directory"
		} else if info, err := e.Info(); err == nil {
			entry.Size = info.Size()
		}
		entries = append(entries, entry)
	}

	return SuccessJSON(struct {
		Path  string      `json:"path"`
		Files []fileEntry `json:"files"`
	}{Path: resolved, Files: entries}), nil
}
