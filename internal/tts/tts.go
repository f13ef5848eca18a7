// Package tts defines the interface for text-to-speech synthesis.
//
// Vakeel speaks its answers in the selected language. Synthesis is the one
// pipeline stage wrapped by a retry policy: transient endpoint failures are
// retried a fixed number of times with a fixed delay, then surfaced with the
// underlying cause.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the ISO-639-1 code (e.g. "en", "hi") to select the voice.
	Language string
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the synthesized audio bytes.
	Audio []byte

	// ContentType is the MIME type of the audio (e.g. "audio/mpeg").
	ContentType string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Synthesize generates audio from the given text. The text must already
	// be sanitized for speech.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// RetryPolicy bounds the synthesis retry loop. There is no backoff growth:
// the delay between attempts is fixed.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy is the production policy: three attempts, two seconds apart.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}

// Retrying wraps a Synthesizer with a RetryPolicy.
type Retrying struct {
	inner  Synthesizer
	policy RetryPolicy
}

// NewRetrying wraps inner with the given policy. A non-positive MaxAttempts
// is treated as one attempt.
func NewRetrying(inner Synthesizer, policy RetryPolicy) *Retrying {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &Retrying{inner: inner, policy: policy}
}

// Synthesize attempts synthesis up to MaxAttempts times, sleeping the fixed
// delay between attempts. The final failure carries the last cause.
func (r *Retrying) Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		result, err := r.inner.Synthesize(ctx, text, opts)
		if err == nil {
			return result, nil
		}
		lastErr = err
		slog.Warn("synthesis attempt failed", "attempt", attempt, "max_attempts", r.policy.MaxAttempts, "error", err)

		if attempt < r.policy.MaxAttempts && r.policy.Delay > 0 {
			select {
			case <-time.After(r.policy.Delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("synthesis failed after %d attempts: %w", r.policy.MaxAttempts, lastErr)
}

// Close closes the wrapped synthesizer.
func (r *Retrying) Close() error { return r.inner.Close() }
