// Package speech defines the interface for speech-to-text recognition.
//
// Recognition failures are tagged, not retried: the pipeline reports them to
// the user and ends the turn before completion is reached, leaving history
// untouched. Callers distinguish the variants with errors.Is.
package speech

import (
	"context"
	"errors"
)

// Tagged recognition outcomes.
var (
	// ErrTimeout means the listen deadline elapsed before a result arrived.
	ErrTimeout = errors.New("speech: listening timed out")

	// ErrUnintelligible means the service returned no hypothesis for the audio.
	ErrUnintelligible = errors.New("speech: could not understand audio")

	// ErrService means the recognition service itself failed.
	ErrService = errors.New("speech: recognition service error")
)

// Recognizer converts captured audio to text.
type Recognizer interface {
	// Recognize transcribes audio captured in the given locale (BCP-47 tag,
	// e.g. "hi-IN"). contentType is the audio MIME type. Failures are one of
	// ErrTimeout, ErrUnintelligible or ErrService (possibly wrapped).
	Recognize(ctx context.Context, audio []byte, contentType, locale string) (string, error)

	// Close releases any resources held by the recognizer.
	Close() error
}
