// Package store persists the single user aggregate to a flat JSON file.
//
// The store is read-modify-write with no cross-process locking and no
// temp-file-then-rename step; that is safe for a single-user, single-process
// local tool, and keeps the file trivially inspectable.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/asharma/vakeel/internal/message"
)

// Store reads and writes the user aggregate at a fixed path.
type Store struct {
	path string
}

// Open creates a store backed by the file at path. The file is not touched
// until the first Load or Save.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the stored aggregate. A missing file yields the empty default.
// A file that exists but fails to decode returns an error: corruption is
// surfaced, never silently replaced with an empty aggregate.
func (s *Store) Load() (message.UserData, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		slog.Debug("no user data file, starting empty", "path", s.path)
		return message.Empty(), nil
	}
	if err != nil {
		return message.UserData{}, fmt.Errorf("reading user data: %w", err)
	}

	var data message.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		return message.UserData{}, fmt.Errorf("decoding user data %s: %w", s.path, err)
	}
	if data.History == nil {
		data.History = []message.Turn{}
	}
	if data.Bookmarks == nil {
		data.Bookmarks = []string{}
	}
	return data, nil
}

// Save serialises the whole aggregate and overwrites the backing file.
// The write is not atomic: a crash mid-write can corrupt the store.
func (s *Store) Save(data message.UserData) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding user data: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing user data: %w", err)
	}
	slog.Debug("user data saved", "path", s.path, "turns", len(data.History), "bookmarks", len(data.Bookmarks))
	return nil
}
