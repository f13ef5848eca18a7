// Package offline is the placeholder Completer used when the online toggle
// is off. A local inference path has not been built yet; until it is, this
// backend answers every prompt with a fixed notice.
package offline

import "context"

const notice = "Offline mode is not ready yet."

// Completer is the offline stub.
type Completer struct{}

// New creates the offline stub completer.
func New() *Completer { return &Completer{} }

// Name returns the backend identifier.
func (c *Completer) Name() string { return "offline" }

// Complete returns the fixed offline notice for every prompt.
func (c *Completer) Complete(_ context.Context, _, _, _ string) (string, error) {
	return notice, nil
}

// Close is a no-op.
func (c *Completer) Close() error { return nil }
