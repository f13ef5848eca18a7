// Package memory keeps a bounded sliding window of recent exchanges.
//
// The window is the raw material for prompt context. It is independent of the
// persisted history: it holds at most the last k exchange pairs, lives only
// in process memory, and is cleared on reset.
package memory

import "strings"

// Window holds the most recent k (user, assistant) exchange pairs.
type Window struct {
	k     int
	pairs []pair
}

type pair struct {
	user      string
	assistant string
}

// NewWindow creates a window bounded to k exchange pairs. k <= 0 means an
// always-empty window.
func NewWindow(k int) *Window {
	return &Window{k: k}
}

// Append records one completed exchange, evicting the oldest pair when the
// window is full.
func (w *Window) Append(user, assistant string) {
	if w.k <= 0 {
		return
	}
	w.pairs = append(w.pairs, pair{user: user, assistant: assistant})
	if len(w.pairs) > w.k {
		w.pairs = w.pairs[len(w.pairs)-w.k:]
	}
}

// Clear empties the window.
func (w *Window) Clear() {
	w.pairs = nil
}

// Len returns the number of exchange pairs currently held.
func (w *Window) Len() int {
	return len(w.pairs)
}

// Context renders the window as the free-text context blob consumed by the
// completion adapter. Empty when the window is empty.
func (w *Window) Context() string {
	if len(w.pairs) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range w.pairs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("User: ")
		sb.WriteString(p.user)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(p.assistant)
	}
	return sb.String()
}
