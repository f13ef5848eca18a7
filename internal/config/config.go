// Package config handles loading and validating the vakeel configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the vakeel daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Store      StoreConfig      `mapstructure:"store"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the API and health server settings.
type ServerConfig struct {
	Port       int `mapstructure:"port"`
	HealthPort int `mapstructure:"health_port"`
}

// StoreConfig holds the flat-file persistence settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// MemoryConfig holds the conversation-memory window settings.
type MemoryConfig struct {
	// Window is the number of recent exchange pairs kept for prompt context.
	Window int `mapstructure:"window"`
}

// LLMConfig selects and configures the completion backend.
type LLMConfig struct {
	// Backend is "openrouter" or "offline".
	Backend    string           `mapstructure:"backend"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`

	// SystemPrompt is the fixed instruction identifying the assistant's
	// legal-advice domain.
	SystemPrompt string `mapstructure:"system_prompt"`

	// ThreadContext feeds the conversation-memory window into the
	// completion call. Off by default: the window is maintained but the
	// context blob sent with each completion stays empty.
	ThreadContext bool `mapstructure:"thread_context"`
}

// OpenRouterConfig holds OpenRouter API settings.
type OpenRouterConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Referer string `mapstructure:"referer"`
	Title   string `mapstructure:"title"`
}

// TranslatorConfig holds translation service settings.
type TranslatorConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// SpeechConfig holds speech-recognition settings.
type SpeechConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`

	// ListenTimeout bounds the whole recognition exchange.
	ListenTimeout time.Duration `mapstructure:"listen_timeout"`

	// PhraseTimeLimit bounds the spoken phrase duration after speech onset.
	PhraseTimeLimit time.Duration `mapstructure:"phrase_time_limit"`

	// SampleRate is the expected capture sample rate in Hz.
	SampleRate int `mapstructure:"sample_rate"`
}

// TTSConfig holds text-to-speech settings.
type TTSConfig struct {
	Endpoint string `mapstructure:"endpoint"`

	// MaxAttempts and RetryDelay form the synthesis retry policy: a fixed
	// number of attempts with a fixed delay, no backoff growth.
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./vakeel.yaml, ./configs/vakeel.yaml, /etc/vakeel/vakeel.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("store.path", "user_data.json")
	v.SetDefault("memory.window", 2)
	v.SetDefault("llm.backend", "openrouter")
	v.SetDefault("llm.openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.openrouter.model", "deepseek/deepseek-r1-0528:free")
	v.SetDefault("llm.system_prompt",
		"As a legal chatbot specializing in the Indian Penal Code and Department of Justice services, provide accurate answers.")
	v.SetDefault("llm.thread_context", false)
	v.SetDefault("translator.endpoint", "")
	v.SetDefault("speech.endpoint", "")
	v.SetDefault("speech.listen_timeout", 10*time.Second)
	v.SetDefault("speech.phrase_time_limit", 5*time.Second)
	v.SetDefault("speech.sample_rate", 16000)
	v.SetDefault("tts.endpoint", "")
	v.SetDefault("tts.max_attempts", 3)
	v.SetDefault("tts.retry_delay", 2*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vakeel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vakeel")
	}

	// Environment variables: VAKEEL_SERVER_PORT, VAKEEL_LLM_BACKEND, etc.
	v.SetEnvPrefix("VAKEEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g. "${OPENROUTER_API_KEY}")
	cfg.LLM.OpenRouter.APIKey = resolveEnvRef(cfg.LLM.OpenRouter.APIKey)
	cfg.Speech.APIKey = resolveEnvRef(cfg.Speech.APIKey)

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
