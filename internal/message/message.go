// Package message defines the core data types flowing through the vakeel pipeline.
package message

import (
	"encoding/base64"
	"time"
)

// TimestampLayout is the second-precision format used for persisted turns
// and the plain-text history export.
const TimestampLayout = "2006-01-02 15:04:05"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Title returns the role with its first letter capitalised, as used in the
// history export ("User", "Assistant").
func (r Role) Title() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Turn is one exchange unit. Turns are immutable once appended to history;
// they are only ever removed in bulk (clear / reset).
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Timestamp is formatted with TimestampLayout (second precision).
	Timestamp string `json:"timestamp"`

	// WordCount is present only on assistant turns.
	WordCount int `json:"word_count,omitempty"`

	// Failed marks an assistant turn whose content is a completion-failure
	// fallback rather than a real answer, so it can be filtered from
	// prompt context and display.
	Failed bool `json:"failed,omitempty"`
}

// NewTurn creates a turn stamped at the given time.
func NewTurn(role Role, content string, at time.Time) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		Timestamp: at.Format(TimestampLayout),
	}
}

// UserData is the single persisted aggregate: the full conversation history
// and the bookmark list for the one local user. Every save serialises the
// whole aggregate.
type UserData struct {
	History   []Turn   `json:"history"`
	Bookmarks []string `json:"bookmarks"`
}

// Empty returns the default aggregate used when no backing file exists yet.
func Empty() UserData {
	return UserData{History: []Turn{}, Bookmarks: []string{}}
}

// ExchangeRequest is one user utterance entering the pipeline, either typed
// text or captured audio (never both; text wins if both are set).
type ExchangeRequest struct {
	// Text is a typed prompt. Empty if the input is spoken.
	Text string `json:"text,omitempty"`

	// Audio is the captured utterance. Nil for typed input.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of Audio (e.g. "audio/l16; rate=16000").
	ContentType string `json:"content_type,omitempty"`

	// Language is the selected language name (e.g. "Hindi"). Unknown names
	// fall back to the pivot language.
	Language string `json:"language"`

	// Online selects the remote completion backend; when false the offline
	// stub answers instead.
	Online bool `json:"online"`
}

// HasAudio reports whether the request carries a spoken utterance.
func (r *ExchangeRequest) HasAudio() bool {
	return len(r.Audio) > 0
}

// ExchangeResult is the outcome of one full pipeline turn.
type ExchangeResult struct {
	// ExchangeID is a unique identifier for this turn (UUID).
	ExchangeID string `json:"exchange_id"`

	// Transcript is the recognised (and possibly translated) user prompt.
	Transcript string `json:"transcript"`

	// Answer is the assistant response in the selected language.
	Answer string `json:"answer"`

	// WordCount counts the whitespace-separated words of Answer.
	WordCount int `json:"word_count"`

	// Audio is the synthesized answer as base64-encoded audio, empty when
	// synthesis failed or produced nothing.
	Audio string `json:"audio,omitempty"`

	// AudioContentType is the MIME type of Audio (e.g. "audio/mpeg").
	AudioContentType string `json:"audio_content_type,omitempty"`

	// Timestamp is when the assistant turn was recorded.
	Timestamp string `json:"timestamp"`

	// Warning carries a non-fatal degradation notice (translation skipped,
	// synthesis failed) that the UI should surface.
	Warning string `json:"warning,omitempty"`

	// Failed is true when Answer is a completion-failure fallback.
	Failed bool `json:"failed,omitempty"`
}

// SetAudioBytes base64-encodes raw audio bytes into Audio.
func (r *ExchangeResult) SetAudioBytes(audio []byte, contentType string) {
	if len(audio) > 0 {
		r.Audio = base64.StdEncoding.EncodeToString(audio)
		r.AudioContentType = contentType
	}
}
