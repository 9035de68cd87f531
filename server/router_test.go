package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsmith/agent"
	"docsmith/model"
	"docsmith/storage"
	"docsmith/tools"
)

// stubInvoker returns a fixed response or error.
type stubInvoker struct {
	response agent.Response
	err      error
	gotTask  string
}

func (s *stubInvoker) Run(ctx context.Context, prompt string) (agent.Response, error) {
	s.gotTask = prompt
	return s.response, s.err
}

// fixedInvoker is a factory that hands out the same invoker every time.
func fixedInvoker(inv Invoker) InvokerFactory {
	return func() (Invoker, error) { return inv, nil }
}

func newTestHistory(t *testing.T) *storage.SqliteStorage {
	t.Helper()
	store, err := storage.NewSqliteInMemory()
	if err != nil {
		t.Fatalf("failed to create history: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func postDocument(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/document", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestDocumentMissingPrompt(t *testing.T) {
	handler := NewRouter(fixedInvoker(&stubInvoker{}), nil, nil)

	for _, body := range []string{`{}`, `{"prompt": ""}`, `{"prompt": "   "}`} {
		rec := postDocument(t, handler, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid error body: %v", err)
		}
		if resp["error"] != "Prompt is required" {
			t.Errorf("unexpected error message: %q", resp["error"])
		}
	}
}

func TestDocumentSuccess(t *testing.T) {
	invoker := &stubInvoker{response: agent.Response{Text: "Summary of the report."}}
	handler := NewRouter(fixedInvoker(invoker), nil, nil)

	rec := postDocument(t, handler, `{"prompt": "Summarize report.txt", "filePath": "docs/report.txt"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp["response"] != "Summary of the report." {
		t.Errorf("unexpected response: %q", resp["response"])
	}

	if !strings.Contains(invoker.gotTask, "Summarize report.txt") ||
		!strings.Contains(invoker.gotTask, "Document path: docs/report.txt") {
		t.Errorf("file path not folded into task: %q", invoker.gotTask)
	}
}

func TestDocumentFailureIsOpaque(t *testing.T) {
	invoker := &stubInvoker{err: errors.New("provider exploded: secret detail")}
	handler := NewRouter(fixedInvoker(invoker), nil, nil)

	rec := postDocument(t, handler, `{"prompt": "Analyze"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp["error"] != "An error occurred processing the document" {
		t.Errorf("unexpected error message: %q", resp["error"])
	}
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Error("internal error detail leaked to client")
	}
}

func TestDocumentRecordsInvocation(t *testing.T) {
	history := newTestHistory(t)
	invoker := &stubInvoker{response: agent.Response{
		Text:     "Done.",
		LLMCalls: 2,
		ToolCalls: []model.ToolCall{
			{Name: "read_file", Input: `{"path":"a.txt"}`, Success: true},
		},
	}}
	handler := NewRouter(fixedInvoker(invoker), history, nil)

	rec := postDocument(t, handler, `{"prompt": "Read a.txt"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	list, err := history.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 recorded invocation, got %d", len(list))
	}
	if list[0].Prompt != "Read a.txt" || list[0].Status != model.StatusCompleted || list[0].LLMCalls != 2 {
		t.Errorf("unexpected record: %+v", list[0])
	}
}

func TestDocumentStepLimitRecordedAsSuch(t *testing.T) {
	history := newTestHistory(t)
	invoker := &stubInvoker{err: &agent.StepLimitError{MaxSteps: 15}}
	handler := NewRouter(fixedInvoker(invoker), history, nil)

	rec := postDocument(t, handler, `{"prompt": "loop"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	list, err := history.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(list) != 1 || list[0].Status != model.StatusStepLimit {
		t.Errorf("expected step_limit record, got %+v", list)
	}
}

func TestInvocationEndpoints(t *testing.T) {
	history := newTestHistory(t)
	inv := model.Invocation{
		ID:       "inv-1",
		Prompt:   "p",
		Response: "r",
		Status:   model.StatusCompleted,
		ToolCalls: []model.ToolCall{
			{Name: "list_files", Input: `{}`, Success: true},
		},
	}
	if err := history.RecordInvocation(context.Background(), inv); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	handler := NewRouter(fixedInvoker(&stubInvoker{}), history, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invocations?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var list []model.Invocation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid list body: %v", err)
	}
	if len(list) != 1 || list[0].ID != "inv-1" {
		t.Errorf("unexpected list: %+v", list)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invocations/inv-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
	var got model.Invocation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid get body: %v", err)
	}
	if len(got.ToolCalls) != 1 || got.ToolCalls[0].Name != "list_files" {
		t.Errorf("tool trace missing: %+v", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/invocations/absent", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing id: expected 404, got %d", rec.Code)
	}
}

// toolInvoker executes the prompt as a single tool directive against
// its registry, standing in for the model's tool selection.
type toolInvoker struct {
	registry *tools.Registry
}

func (ti *toolInvoker) Run(ctx context.Context, prompt string) (agent.Response, error) {
	var action struct {
		Tool  string          `json:"tool"`
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal([]byte(prompt), &action); err != nil {
		return agent.Response{}, err
	}
	tool, ok := ti.registry.Get(action.Tool)
	if !ok {
		return agent.Response{}, fmt.Errorf("unknown tool: %s", action.Tool)
	}
	result, err := tools.ExecuteOnce(ctx, tool, action.Input)
	if err != nil {
		return agent.Response{}, err
	}
	if result.Error != nil {
		return agent.Response{}, result.Error
	}
	return agent.Response{Text: result.Output}, nil
}

func TestDocumentDirectoryChangeDoesNotLeakAcrossRequests(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "top.txt"), []byte("top"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := os.Mkdir(filepath.Join(base, "sub"), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "sub", "secret.txt"), []byte("s"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	var built int
	factory := func() (Invoker, error) {
		built++
		ws, err := tools.NewWorkspace(base)
		if err != nil {
			return nil, err
		}
		registry, err := tools.ForWorkspace(ws)
		if err != nil {
			return nil, err
		}
		return &toolInvoker{registry: registry}, nil
	}
	handler := NewRouter(factory, nil, nil)

	post := func(directive string) *httptest.ResponseRecorder {
		body, err := json.Marshal(map[string]string{"prompt": directive})
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		return postDocument(t, handler, string(body))
	}

	rec := post(`{"tool": "change_directory", "input": {"path": "sub"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("change_directory request: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = post(`{"tool": "list_files", "input": {"path": "."}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("list_files request: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "secret.txt") {
		t.Errorf("second request observed first request's directory change: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "top.txt") {
		t.Errorf("second request did not list the base directory: %s", rec.Body.String())
	}

	if built != 2 {
		t.Errorf("expected one invoker per request, got %d for 2 requests", built)
	}
}

func TestHealth(t *testing.T) {
	handler := NewRouter(fixedInvoker(&stubInvoker{}), nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}
