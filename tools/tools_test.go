package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return ws
}

func mustArgs(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}
	return data
}

func TestForWorkspaceRegistersAllTools(t *testing.T) {
	registry, err := ForWorkspace(newTestWorkspace(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"analyze_document", "change_directory", "detect_document_type",
		"extract_text_content", "list_files", "read_file", "save_analysis",
		"search_document",
	}
	got := registry.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d tools, got %v", len(want), got)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("expected tool %q at %d, got %q", name, i, got[i])
		}
	}
}

func TestChangeDirectoryUpdatesWorkspace(t *testing.T) {
	ws := newTestWorkspace(t)
	sub := filepath.Join(ws.Base(), "docs")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	tool := NewChangeDirectoryTool(ws)
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": "docs"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	var out struct {
		CurrentDirectory string `json:"currentDirectory"`
	}
	if err := json.Unmarshal([]byte(result.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.CurrentDirectory != sub {
		t.Errorf("expected %q, got %q", sub, out.CurrentDirectory)
	}
	if ws.Base() != sub {
		t.Errorf("workspace base not updated: %q", ws.Base())
	}
}

func TestChangeDirectoryMissingPathFails(t *testing.T) {
	tool := NewChangeDirectoryTool(newTestWorkspace(t))
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": "absent"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected structured failure for missing directory")
	}
}

func TestListFilesRefusesBlockedPaths(t *testing.T) {
	ws := newTestWorkspace(t)
	// Create the directory to prove refusal happens without touching it.
	if err := os.Mkdir(filepath.Join(ws.Base(), ".git"), 0755); err != nil {
		t.Fatalf("failed to create .git: %v", err)
	}

	tool := NewListFilesTool(ws)
	for _, path := range []string{".git", "node_modules", "vendor/node_modules"} {
		result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": path}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Success() {
			t.Errorf("expected refusal for %q", path)
		}
		if !strings.Contains(result.Error.Error(), "not allowed") {
			t.Errorf("expected 'not allowed' error for %q, got %v", path, result.Error)
		}
	}
}

func TestListFilesDefaultsToCurrentDirectory(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := os.WriteFile(filepath.Join(ws.Base(), "a.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tool := NewListFilesTool(ws)
	result, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	var out struct {
		Path  string `json:"path"`
		Files []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"files"`
	}
	if err := json.Unmarshal([]byte(result.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(out.Files) != 1 || out.Files[0].Name != "a.txt" || out.Files[0].Type != "file" {
		t.Errorf("unexpected listing: %+v", out.Files)
	}
}

func TestReadFileDirectoryDistinctError(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := os.Mkdir(filepath.Join(ws.Base(), "sub"), 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	tool := NewReadFileTool(ws)
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": "sub"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Fatal("expected failure for directory path")
	}
	if !strings.Contains(result.Error.Error(), "is a directory") {
		t.Errorf("expected distinct directory error, got %v", result.Error)
	}
}

func TestReadFileReturnsRawContent(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := os.WriteFile(filepath.Join(ws.Base(), "note.txt"), []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tool := NewReadFileTool(ws)
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": "note.txt"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "hello world" {
		t.Errorf("expected raw content, got %q", result.Output)
	}
}

func TestDetectDocumentTypeTool(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := os.WriteFile(filepath.Join(ws.Base(), "doc.md"), []byte("# hi"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tool := NewDetectDocumentTypeTool(ws)
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": "doc.md"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	var out struct {
		DocumentType string `json:"documentType"`
		SizeBytes    int64  `json:"sizeBytes"`
		ModifiedAt   string `json:"modifiedAt"`
	}
	if err := json.Unmarshal([]byte(result.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.DocumentType != "markdown" {
		t.Errorf("expected markdown, got %q", out.DocumentType)
	}
	if out.SizeBytes != 4 {
		t.Errorf("expected size 4, got %d", out.SizeBytes)
	}
	if _, err := time.Parse(time.RFC3339, out.ModifiedAt); err != nil {
		t.Errorf("modifiedAt is not RFC-3339: %q", out.ModifiedAt)
	}
}

func TestExtractTextToolRefusesBlockedPaths(t *testing.T) {
	tool := NewExtractTextTool(newTestWorkspace(t))
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{"path": "node_modules/pkg/readme.md"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected refusal for node_modules path")
	}
}

func TestAnalyzeDocumentToolTopicsOnly(t *testing.T) {
	tool := NewAnalyzeDocumentTool()
	args := mustArgs(t, map[string]string{
		"content": "kafka kafka kafka stream stream topic",
		"mode":    "topics_only",
	})
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	var out struct {
		Topics    []string `json:"topics"`
		WordCount int      `json:"wordCount"`
	}
	if err := json.Unmarshal([]byte(result.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if len(out.Topics) == 0 || out.Topics[0] != "kafka" {
		t.Errorf("expected kafka first, got %v", out.Topics)
	}
	if out.WordCount != 6 {
		t.Errorf("expected word count 6, got %d", out.WordCount)
	}
}

func TestAnalyzeDocumentToolUnknownMode(t *testing.T) {
	tool := NewAnalyzeDocumentTool()
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]string{
		"content": "some text",
		"mode":    "everything",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for unknown mode")
	}
}

func TestSearchDocumentToolWindow(t *testing.T) {
	tool := NewSearchDocumentTool()
	args := mustArgs(t, map[string]interface{}{
		"content":       "abcXYZdef",
		"query":         "XYZ",
		"contextLength": 3,
	})
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	var out struct {
		MatchCount int `json:"matchCount"`
		Matches    []struct {
			Text     string `json:"text"`
			Position int    `json:"position"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(result.Output), &out); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if out.MatchCount != 1 {
		t.Fatalf("expected 1 match, got %d", out.MatchCount)
	}
	if out.Matches[0].Text != "bcXYZde" || out.Matches[0].Position != 3 {
		t.Errorf("unexpected match: %+v", out.Matches[0])
	}
}

func TestSaveAnalysisRoundTrip(t *testing.T) {
	ws := newTestWorkspace(t)
	tool := NewSaveAnalysisTool(ws)

	args := mustArgs(t, map[string]interface{}{
		"filename":   "report.txt",
		"summary":    "A short summary.",
		"wordCount":  128,
		"sourceFile": "docs/report.txt",
		"outputPath": "out/analysis.json",
		"topics":     []string{"budget", "forecast"},
	})
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success() {
		t.Fatalf("expected success, got %v", result.Error)
	}

	data, err := os.ReadFile(filepath.Join(ws.Base(), "out", "analysis.json"))
	if err != nil {
		t.Fatalf("failed to read saved analysis: %v", err)
	}

	var saved struct {
		Filename    string   `json:"filename"`
		Summary     string   `json:"summary"`
		Topics      []string `json:"topics"`
		WordCount   int      `json:"wordCount"`
		SourceFile  string   `json:"sourceFile"`
		GeneratedAt string   `json:"generatedAt"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved analysis is not valid JSON: %v", err)
	}

	if saved.Filename != "report.txt" || saved.Summary != "A short summary." ||
		saved.WordCount != 128 || saved.SourceFile != "docs/report.txt" {
		t.Errorf("required fields did not round-trip: %+v", saved)
	}
	if len(saved.Topics) != 2 {
		t.Errorf("topics did not round-trip: %v", saved.Topics)
	}
	if _, err := time.Parse(time.RFC3339, saved.GeneratedAt); err != nil {
		t.Errorf("generatedAt is not RFC-3339: %q", saved.GeneratedAt)
	}
}

func TestSaveAnalysisMissingRequiredField(t *testing.T) {
	tool := NewSaveAnalysisTool(newTestWorkspace(t))
	result, err := tool.Execute(context.Background(), mustArgs(t, map[string]interface{}{
		"filename":   "report.txt",
		"wordCount":  12,
		"sourceFile": "report.txt",
		"outputPath": "out.json",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for missing summary")
	}
	if !strings.Contains(result.Error.Error(), "summary is required") {
		t.Errorf("unexpected error: %v", result.Error)
	}
}

func TestToolResultMarshalJSON(t *testing.T) {
	ok, err := json.Marshal(SuccessResult("fine"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(ok) != `{"success":true,"output":"fine"}` {
		t.Errorf("unexpected success encoding: %s", ok)
	}

	failed, err := json.Marshal(FailureResultf("boom"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(failed) != `{"success":false,"error":"boom"}` {
		t.Errorf("unexpected failure encoding: %s", failed)
	}
}
