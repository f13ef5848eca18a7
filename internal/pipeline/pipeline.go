// Package pipeline implements the end-to-end exchange engine.
//
// One exchange runs capture → translate-in → complete → translate-out →
// sanitize → synthesize → persist as a strict sequence. A mutex keeps one
// turn active at a time; there is no cancellation once a turn has started.
// The pipeline also owns the bookmark, clear and reset operations because
// they all mutate the same persisted aggregate.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/asharma/vakeel/internal/language"
	"github.com/asharma/vakeel/internal/llm"
	"github.com/asharma/vakeel/internal/memory"
	"github.com/asharma/vakeel/internal/message"
	"github.com/asharma/vakeel/internal/sanitize"
	"github.com/asharma/vakeel/internal/speech"
	"github.com/asharma/vakeel/internal/store"
	"github.com/asharma/vakeel/internal/translate"
	"github.com/asharma/vakeel/internal/tts"
)

// ErrNoInput is returned when an exchange request carries neither text nor audio.
var ErrNoInput = fmt.Errorf("exchange has no text and no audio")

// ErrNothingToBookmark is returned when no assistant response has been
// produced yet in this session.
var ErrNothingToBookmark = fmt.Errorf("no response to bookmark")

// Options wires the pipeline's collaborators.
type Options struct {
	Store       *store.Store
	Data        message.UserData
	Window      *memory.Window
	Translator  translate.Translator
	Recognizer  speech.Recognizer
	Synthesizer tts.Synthesizer // should already be retry-wrapped
	Online      llm.Completer
	Offline     llm.Completer

	// SystemPrompt is the fixed instruction sent with every completion.
	SystemPrompt string

	// ThreadContext feeds the memory window into the completion call.
	// Off by default: the window is maintained but the context blob sent
	// with each completion stays empty.
	ThreadContext bool

	// Now overrides the clock (tests). Defaults to time.Now.
	Now func() time.Time
}

// Pipeline runs exchanges and owns the session state: the persisted
// aggregate, the memory window, and the last-response cache.
type Pipeline struct {
	mu sync.Mutex

	store       *store.Store
	data        message.UserData
	window      *memory.Window
	translator  translate.Translator
	recognizer  speech.Recognizer
	synthesizer tts.Synthesizer
	online      llm.Completer
	offline     llm.Completer

	systemPrompt  string
	threadContext bool
	lastResponse  string
	now           func() time.Time
}

// New creates a pipeline from options.
func New(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		store:         opts.Store,
		data:          opts.Data,
		window:        opts.Window,
		translator:    opts.Translator,
		recognizer:    opts.Recognizer,
		synthesizer:   opts.Synthesizer,
		online:        opts.Online,
		offline:       opts.Offline,
		systemPrompt:  opts.SystemPrompt,
		threadContext: opts.ThreadContext,
		now:           now,
	}
}

// Exchange processes one user utterance through the full pipeline.
//
// Speech-recognition failures come back as tagged errors (speech.ErrTimeout,
// ErrUnintelligible, ErrService) with history untouched. Completion failures
// never fail the exchange: the fallback error text becomes the answer and the
// persisted assistant turn is tagged failed. Persistence failures propagate.
func (p *Pipeline) Exchange(ctx context.Context, req *message.ExchangeRequest) (*message.ExchangeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	result := &message.ExchangeResult{ExchangeID: uuid.NewString()}
	logger := slog.With("exchange_id", result.ExchangeID, "language", req.Language, "online", req.Online)
	logger.Info("exchange started")

	loc := language.LocaleFor(req.Language)
	pivot := language.IsPivot(req.Language)

	// Capture: typed text, or recognized speech.
	prompt := strings.TrimSpace(req.Text)
	if prompt == "" {
		if !req.HasAudio() {
			return nil, ErrNoInput
		}
		recognized, err := p.recognizer.Recognize(ctx, req.Audio, req.ContentType, loc.Speech)
		if err != nil {
			logger.Warn("recognition failed, turn aborted", "error", err)
			return nil, err
		}
		prompt = recognized
		logger.Info("recognition complete", "chars", len(prompt))
	}

	// Translate the prompt into the pivot language. Skipped entirely for
	// pivot-language turns. A translation failure degrades to pass-through.
	if !pivot {
		translated, err := p.translator.Translate(ctx, prompt, loc.Translation, language.LocaleFor(language.Pivot).Translation)
		if err != nil {
			logger.Warn("prompt translation failed, passing through untranslated", "error", err)
			result.Warning = "translation unavailable, answering from the original text"
		} else {
			prompt = translated
		}
	}
	result.Transcript = prompt

	// Record the user turn before completion is attempted.
	userTurn := message.NewTurn(message.RoleUser, prompt, p.now())
	p.data.History = append(p.data.History, userTurn)
	if err := p.store.Save(p.data); err != nil {
		return nil, fmt.Errorf("persisting user turn: %w", err)
	}

	// Complete. Failures become a user-visible fallback answer; the turn
	// never crashes here.
	contextBlob := ""
	if p.threadContext {
		contextBlob = p.window.Context()
	}
	completer := p.offline
	if req.Online {
		completer = p.online
	}
	answer, err := completer.Complete(ctx, p.systemPrompt, contextBlob, prompt)
	failed := false
	if err != nil {
		answer = fmt.Sprintf("Error calling completion API: %v", err)
		failed = true
		logger.Error("completion failed", "backend", completer.Name(), "error", err)
	} else {
		logger.Info("completion complete", "backend", completer.Name(), "chars", len(answer))
	}

	// Translate the answer back out of the pivot language.
	if !pivot && !failed {
		translated, terr := p.translator.Translate(ctx, answer, language.LocaleFor(language.Pivot).Translation, loc.Translation)
		if terr != nil {
			logger.Warn("answer translation failed, passing through untranslated", "error", terr)
			result.Warning = "translation unavailable, answer left in English"
		} else {
			answer = translated
		}
	}

	// Record the assistant turn.
	assistantTurn := message.NewTurn(message.RoleAssistant, answer, p.now())
	assistantTurn.WordCount = len(strings.Fields(answer))
	assistantTurn.Failed = failed
	p.data.History = append(p.data.History, assistantTurn)
	if err := p.store.Save(p.data); err != nil {
		return nil, fmt.Errorf("persisting assistant turn: %w", err)
	}

	// Failed turns are kept out of the memory window so fallback error text
	// never becomes prompt context.
	if !failed {
		p.window.Append(prompt, answer)
	}

	// Speak the answer. Synthesis failure degrades the exchange, it does
	// not abort it: the retry wrapper has already exhausted its attempts.
	spoken := sanitize.Sanitize(answer, req.Language)
	if strings.TrimSpace(spoken) != "" {
		synth, serr := p.synthesizer.Synthesize(ctx, spoken, tts.SynthesizeOpts{Language: loc.Translation})
		if serr != nil {
			logger.Error("synthesis failed", "error", serr)
			result.Warning = fmt.Sprintf("text-to-speech failed: %v", serr)
		} else {
			result.SetAudioBytes(synth.Audio, synth.ContentType)
		}
	}

	p.lastResponse = answer

	result.Answer = answer
	result.WordCount = assistantTurn.WordCount
	result.Timestamp = assistantTurn.Timestamp
	result.Failed = failed

	logger.Info("exchange complete", "duration", time.Since(start), "word_count", result.WordCount, "failed", failed)
	return result, nil
}

// Bookmark saves the most recent assistant response. Duplicates are permitted.
func (p *Pipeline) Bookmark() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastResponse == "" {
		return ErrNothingToBookmark
	}
	p.data.Bookmarks = append(p.data.Bookmarks, p.lastResponse)
	if err := p.store.Save(p.data); err != nil {
		return fmt.Errorf("persisting bookmark: %w", err)
	}
	slog.Info("response bookmarked", "bookmarks", len(p.data.Bookmarks))
	return nil
}

// Reset clears the conversation: history, memory window and last-response
// cache. Bookmarks are untouched. The cleared state is persisted.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data.History = []message.Turn{}
	p.window.Clear()
	p.lastResponse = ""
	if err := p.store.Save(p.data); err != nil {
		return fmt.Errorf("persisting reset: %w", err)
	}
	slog.Info("conversation reset")
	return nil
}

// ClearHistory empties the persisted history only; the memory window and
// last-response cache keep serving the live session.
func (p *Pipeline) ClearHistory() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data.History = []message.Turn{}
	if err := p.store.Save(p.data); err != nil {
		return fmt.Errorf("persisting history clear: %w", err)
	}
	slog.Info("history cleared")
	return nil
}

// ClearBookmarks empties the bookmark list.
func (p *Pipeline) ClearBookmarks() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data.Bookmarks = []string{}
	if err := p.store.Save(p.data); err != nil {
		return fmt.Errorf("persisting bookmark clear: %w", err)
	}
	slog.Info("bookmarks cleared")
	return nil
}

// History returns a copy of the persisted conversation history.
func (p *Pipeline) History() []message.Turn {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]message.Turn, len(p.data.History))
	copy(out, p.data.History)
	return out
}

// Bookmarks returns a copy of the bookmark list.
func (p *Pipeline) Bookmarks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.data.Bookmarks))
	copy(out, p.data.Bookmarks)
	return out
}

// LastResponse returns the cached most recent assistant answer.
func (p *Pipeline) LastResponse() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastResponse
}

// ExportHistory renders the history as plain text, one line per turn with a
// blank line between entries.
func (p *Pipeline) ExportHistory() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	lines := make([]string, 0, len(p.data.History))
	for _, turn := range p.data.History {
		lines = append(lines, fmt.Sprintf("%s - %s: %s", turn.Timestamp, turn.Role.Title(), turn.Content))
	}
	return strings.Join(lines, "\n\n")
}
