// Vakeel is a voice-capable legal assistant daemon. It accepts questions in
// any of the supported languages (typed or spoken), routes them through a
// translate → complete → translate pipeline pivoting on English, speaks the
// answer back, and persists the conversation history and bookmarks locally.
//
// Usage:
//
//	vakeel [flags]
//	vakeel --config /path/to/vakeel.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/asharma/vakeel/internal/config"
	"github.com/asharma/vakeel/internal/health"
	"github.com/asharma/vakeel/internal/llm"
	offlinellm "github.com/asharma/vakeel/internal/llm/offline"
	openrouterllm "github.com/asharma/vakeel/internal/llm/openrouter"
	"github.com/asharma/vakeel/internal/memory"
	"github.com/asharma/vakeel/internal/pipeline"
	"github.com/asharma/vakeel/internal/server"
	"github.com/asharma/vakeel/internal/speech/googlestt"
	"github.com/asharma/vakeel/internal/store"
	"github.com/asharma/vakeel/internal/translate/googletrans"
	"github.com/asharma/vakeel/internal/tts"
	"github.com/asharma/vakeel/internal/tts/gtts"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/vakeel.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vakeel %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("vakeel starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Open the user data store. A corrupt file is fatal: data integrity
	// matters more than availability here.
	st := store.Open(cfg.Store.Path)
	data, err := st.Load()
	if err != nil {
		slog.Error("failed to load user data", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("user data loaded", "path", cfg.Store.Path,
		"turns", len(data.History), "bookmarks", len(data.Bookmarks))

	// Initialize the completion backend.
	var online llm.Completer
	switch cfg.LLM.Backend {
	case "openrouter":
		online = openrouterllm.New(cfg.LLM.OpenRouter)
		slog.Info("using OpenRouter completion backend", "model", cfg.LLM.OpenRouter.Model)
	case "offline":
		online = offlinellm.New()
		slog.Info("using offline completion stub")
	default:
		slog.Error("unknown llm backend", "backend", cfg.LLM.Backend)
		os.Exit(1)
	}
	defer online.Close()

	translator := googletrans.New(cfg.Translator.Endpoint)
	defer translator.Close()

	recognizer := googlestt.New(googlestt.Config{
		Endpoint:        cfg.Speech.Endpoint,
		APIKey:          cfg.Speech.APIKey,
		ListenTimeout:   cfg.Speech.ListenTimeout,
		PhraseTimeLimit: cfg.Speech.PhraseTimeLimit,
		SampleRate:      cfg.Speech.SampleRate,
	})
	defer recognizer.Close()

	synthesizer := tts.NewRetrying(gtts.New(cfg.TTS.Endpoint), tts.RetryPolicy{
		MaxAttempts: cfg.TTS.MaxAttempts,
		Delay:       cfg.TTS.RetryDelay,
	})
	defer synthesizer.Close()

	// Create the exchange pipeline.
	p := pipeline.New(pipeline.Options{
		Store:         st,
		Data:          data,
		Window:        memory.NewWindow(cfg.Memory.Window),
		Translator:    translator,
		Recognizer:    recognizer,
		Synthesizer:   synthesizer,
		Online:        online,
		Offline:       offlinellm.New(),
		SystemPrompt:  cfg.LLM.SystemPrompt,
		ThreadContext: cfg.LLM.ThreadContext,
	})

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start the API server.
	apiServer := server.New(cfg.Server.Port, p)
	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.ListenAndServe(ctx)
	}()

	healthServer.SetReady(true)
	slog.Info("vakeel ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal or server failure.
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining...")
	case err := <-errCh:
		if err != nil {
			slog.Error("api server failed", "error", err)
		}
	}

	if err := apiServer.Close(); err != nil {
		slog.Error("api server close error", "error", err)
	}
	slog.Info("vakeel stopped")
}
