// Package llm defines the interface for the remote completion backend.
//
// A completer takes the fixed system instruction, a free-text context blob
// (may be empty) and the user's pivot-language prompt, and produces the
// answer text. Vakeel ships with two backends: OpenRouter (cloud) and an
// offline stub.
package llm

import "context"

// Completer generates an answer for a user prompt.
type Completer interface {
	// Name returns the backend identifier (e.g. "openrouter", "offline").
	Name() string

	// Complete performs a single non-streaming completion call. There is no
	// retry; the pipeline converts failures into a user-visible fallback
	// answer rather than crashing the turn.
	Complete(ctx context.Context, systemPrompt, contextBlob, userPrompt string) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}
