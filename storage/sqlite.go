// Package storage persists invocation history in SQLite.
//
// Every answered prompt is recorded with its response, token accounting
// and the ordered tool-call trace. Thread-safe via sql.DB's built-in
// connection pooling.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"docsmith/model"
)

// SqliteStorage stores invocations in a SQLite database.
type SqliteStorage struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path,
// creating parent directories if needed.
func OpenSqlite(path string) (*SqliteStorage, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStorage, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	storage := &SqliteStorage{db: db}
	if err := storage.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// Close closes the database connection.
func (s *SqliteStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteStorage) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS invocations (
			id TEXT PRIMARY KEY,
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			status TEXT NOT NULL,
			llm_calls INTEGER NOT NULL DEFAULT 0,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_invocations_created
		ON invocations(created_at DESC);

		CREATE TABLE IF NOT EXISTS tool_calls (
			invocation_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT,
			error TEXT,
			success INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (invocation_id, seq),
			FOREIGN KEY (invocation_id) REFERENCES invocations(id) ON DELETE CASCADE
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordInvocation stores an invocation with its tool-call trace. A
// missing CreatedAt is filled with the current UTC time.
func (s *SqliteStorage) RecordInvocation(ctx context.Context, inv model.Invocation) error {
	if inv.ID == "" {
		return fmt.Errorf("invocation id is required")
	}
	if inv.CreatedAt == "" {
		inv.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invocations
		(id, prompt, response, status, llm_calls, prompt_tokens, completion_tokens, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.Prompt,
		inv.Response,
		string(inv.Status),
		inv.LLMCalls,
		inv.PromptTokens,
		inv.CompletionTokens,
		inv.DurationMs,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tool_calls
		(invocation_id, seq, name, input, output, error, success, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tool call insert: %w", err)
	}
	defer stmt.Close()

	for i, call := range inv.ToolCalls {
		_, err = stmt.ExecContext(ctx,
			inv.ID, i, call.Name, call.Input, call.Output, call.Error,
			call.Success, call.DurationMs)
		if err != nil {
			return fmt.Errorf("failed to insert tool call: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListRecent returns the most recent invocations without their tool
// traces, newest first.
func (s *SqliteStorage) ListRecent(ctx context.Context, limit int) ([]model.Invocation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prompt, response, status, llm_calls, prompt_tokens, completion_tokens, duration_ms, created_at
		FROM invocations
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	invocations := []model.Invocation{} // empty slice, not nil
	for rows.Next() {
		var inv model.Invocation
		var status string
		err := rows.Scan(
			&inv.ID, &inv.Prompt, &inv.Response, &status,
			&inv.LLMCalls, &inv.PromptTokens, &inv.CompletionTokens,
			&inv.DurationMs, &inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		inv.Status = model.InvocationStatus(status)
		invocations = append(invocations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invocations: %w", err)
	}
	return invocations, nil
}

// Get returns an invocation with its tool trace, or nil if not found.
func (s *SqliteStorage) Get(ctx context.Context, id string) (*model.Invocation, error) {
	var inv model.Invocation
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, prompt, response, status, llm_calls, prompt_tokens, completion_tokens, duration_ms, created_at
		FROM invocations WHERE id = ?`, id).Scan(
		&inv.ID, &inv.Prompt, &inv.Response, &status,
		&inv.LLMCalls, &inv.PromptTokens, &inv.CompletionTokens,
		&inv.DurationMs, &inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation: %w", err)
	}
	inv.Status = model.InvocationStatus(status)

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, input, output, error, success, duration_ms
		FROM tool_calls WHERE invocation_id = ?
		ORDER BY seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var call model.ToolCall
		var output, callErr sql.NullString
		if err := rows.Scan(&call.Name, &call.Input, &output, &callErr, &call.Success, &call.DurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan tool call: %w", err)
		}
		call.Output = output.String
		call.Error = callErr.String
		inv.ToolCalls = append(inv.ToolCalls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tool calls: %w", err)
	}

	return &inv, nil
}
