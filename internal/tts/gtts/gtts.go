// Package gtts implements the Synthesizer interface against the Google
// Translate text-to-speech endpoint.
//
// The "tw-ob" client surface takes the text and language as query parameters
// and answers with an MP3 stream. The query text is capped at roughly 200
// characters, so longer answers are chunked on sentence boundaries and the
// MP3 segments concatenated (MPEG frames are self-delimiting, so plain
// concatenation plays back correctly).
package gtts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asharma/vakeel/internal/tts"
)

const (
	defaultEndpoint = "https://translate.google.com/translate_tts"

	// maxChunkLen is the endpoint's effective query-text limit.
	maxChunkLen = 200
)

// Synthesizer calls the Google Translate TTS endpoint.
type Synthesizer struct {
	endpoint string
	client   *http.Client
}

// New creates a synthesizer. An empty endpoint selects the default.
func New(endpoint string) *Synthesizer {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Synthesizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Synthesize generates MP3 audio for the given text.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	lang := opts.Language
	if lang == "" {
		lang = "en"
	}

	var audio []byte
	for _, chunk := range splitChunks(text, maxChunkLen) {
		part, err := s.fetchChunk(ctx, chunk, lang)
		if err != nil {
			return nil, err
		}
		audio = append(audio, part...)
	}

	slog.Debug("synthesis complete", "language", lang, "text_chars", utf8.RuneCountInString(text), "audio_bytes", len(audio))
	return &tts.SynthesizeResult{
		Audio:       audio,
		ContentType: "audio/mpeg",
	}, nil
}

// Close is a no-op for the web synthesizer.
func (s *Synthesizer) Close() error { return nil }

func (s *Synthesizer) fetchChunk(ctx context.Context, chunk, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", lang)
	q.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating tts request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, body)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned no audio")
	}
	return audio, nil
}

// splitChunks breaks text into pieces of at most limit runes, preferring
// sentence boundaries, then word boundaries.
func splitChunks(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
		currentLen = 0
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen

		// Prefer breaking after sentence-ending punctuation once the
		// chunk is reasonably full.
		last, _ := utf8.DecodeLastRuneInString(word)
		if currentLen >= limit/2 && strings.ContainsRune(".!?।", last) {
			flush()
		}
	}
	flush()
	return chunks
}
