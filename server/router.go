// Package server exposes the document agent over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"docsmith/agent"
	"docsmith/model"
)

// Invoker answers document prompts.
type Invoker interface {
	Run(ctx context.Context, prompt string) (agent.Response, error)
}

// InvokerFactory builds a fresh Invoker for each request. Tool state,
// the workspace directory in particular, must never cross request
// boundaries, so the agent and its tool set are request-scoped.
type InvokerFactory func() (Invoker, error)

// History persists and serves invocation records.
type History interface {
	RecordInvocation(ctx context.Context, inv model.Invocation) error
	ListRecent(ctx context.Context, limit int) ([]model.Invocation, error)
	Get(ctx context.Context, id string) (*model.Invocation, error)
}

type Router struct {
	newInvoker InvokerFactory
	history    History // nil disables persistence
}

// NewRouter builds the HTTP handler. allowedOrigins configures CORS for
// browser clients.
func NewRouter(newInvoker InvokerFactory, history History, allowedOrigins []string) http.Handler {
	r := &Router{newInvoker: newInvoker, history: history}

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(Logging)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/document", r.wrap(r.handleDocument))
		rt.Get("/invocations", r.wrap(r.handleInvocations))
		rt.Get("/invocations/{id}", r.wrap(r.handleInvocation))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap logs handler errors server-side and returns an opaque failure to
// the client. Clients never see internal error detail.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			log.Printf("request failed: method=%s path=%s error=%v", req.Method, req.URL.Path, err)
			respondJSON(w, http.StatusInternalServerError,
				map[string]string{"error": "An error occurred processing the document"})
		}
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /api/document
// Body: {"prompt": "...", "filePath": "...", "content": "..."}
func (r *Router) handleDocument(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Prompt   string `json:"prompt"`
		FilePath string `json:"filePath"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return nil
	}
	if strings.TrimSpace(body.Prompt) == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Prompt is required"})
		return nil
	}

	task := composeTask(body.Prompt, body.FilePath, body.Content)

	invoker, err := r.newInvoker()
	if err != nil {
		return fmt.Errorf("failed to build agent: %w", err)
	}

	response, runErr := invoker.Run(req.Context(), task)
	r.record(req.Context(), body.Prompt, response, runErr)

	if runErr != nil {
		return runErr
	}

	respondJSON(w, http.StatusOK, map[string]string{"response": response.Text})
	return nil
}

// composeTask folds optional document hints into the prompt so the
// model knows what to open without a separate protocol field.
func composeTask(prompt, filePath, content string) string {
	var b strings.Builder
	b.WriteString(prompt)
	if filePath != "" {
		b.WriteString("\n\nDocument path: ")
		b.WriteString(filePath)
	}
	if content != "" {
		b.WriteString("\n\nDocument content:\n")
		b.WriteString(content)
	}
	return b.String()
}

// record stores the invocation best-effort; history failures only log.
func (r *Router) record(ctx context.Context, prompt string, response agent.Response, runErr error) {
	if r.history == nil {
		return
	}

	status := model.StatusCompleted
	text := response.Text
	if runErr != nil {
		var limitErr *agent.StepLimitError
		if errors.As(runErr, &limitErr) {
			status = model.StatusStepLimit
		} else {
			status = model.StatusFailed
		}
		text = runErr.Error()
	}

	inv := model.Invocation{
		ID:               uuid.NewString(),
		Prompt:           prompt,
		Response:         text,
		Status:           status,
		LLMCalls:         response.LLMCalls,
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
		DurationMs:       response.DurationMs,
		ToolCalls:        response.ToolCalls,
	}
	if err := r.history.RecordInvocation(ctx, inv); err != nil {
		log.Printf("failed to record invocation: %v", err)
	}
}

// GET /api/invocations?limit=20
func (r *Router) handleInvocations(w http.ResponseWriter, req *http.Request) error {
	if r.history == nil {
		respondJSON(w, http.StatusOK, []model.Invocation{})
		return nil
	}

	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.history.ListRecent(req.Context(), limit)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, list)
	return nil
}

// GET /api/invocations/{id}
func (r *Router) handleInvocation(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")

	if r.history == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return nil
	}

	inv, err := r.history.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if inv == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return nil
	}

	respondJSON(w, http.StatusOK, inv)
	return nil
}
