// Package config loads the geminiweb configuration from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/llm"
	"github.com/papercomputeco/geminiweb/pkg/session"
)

type Config struct {
	App     AppConfig
	Gemini  GeminiConfig
	Session SessionConfig
}

type AppConfig struct {
	ListenAddr  string `validate:"required"`
	Debug       bool
	LogFilePath string
	BodyLimitMB int `validate:"gte=1,lte=100"`
}

type GeminiConfig struct {
	APIKey         string
	BaseURL        string        `validate:"required,url"`
	ChatModel      string        `validate:"required"`
	VisionModel    string        `validate:"required"`
	TextModel      string        `validate:"required"`
	EmbeddingModel string        `validate:"required"`
	Timeout        time.Duration `validate:"gte=0"`

	// Generation options, unset when nil.
	Temperature     *float64 `validate:"omitnil,gte=0,lte=2"`
	TopP            *float64 `validate:"omitnil,gte=0,lte=1"`
	TopK            *int     `validate:"omitnil,gte=1"`
	MaxOutputTokens *int     `validate:"omitnil,gte=1"`
}

type SessionConfig struct {
	TTL             time.Duration `validate:"gt=0"`
	CleanupInterval time.Duration `validate:"gt=0"`
}

// Load reads .env when present and then the environment. It does not
// validate; call Validate once flags have been applied.
func Load() *Config {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
			Debug:       getEnvAsBool("DEBUG", false),
			LogFilePath: getEnv("LOG_FILE_PATH", ""),
			BodyLimitMB: getEnvAsInt("BODY_LIMIT_MB", 10),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
			BaseURL:        getEnv("GEMINI_BASE_URL", gemini.DefaultBaseURL),
			ChatModel:      getEnv("GEMINI_CHAT_MODEL", gemini.DefaultChatModel),
			VisionModel:    getEnv("GEMINI_VISION_MODEL", gemini.DefaultVisionModel),
			TextModel:      getEnv("GEMINI_TEXT_MODEL", gemini.DefaultTextModel),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", gemini.DefaultEmbeddingModel),
			Timeout:        getEnvAsDuration("GEMINI_HTTP_TIMEOUT", 5*time.Minute),

			Temperature:     getEnvAsFloatPtr("GEMINI_TEMPERATURE"),
			TopP:            getEnvAsFloatPtr("GEMINI_TOP_P"),
			TopK:            getEnvAsIntPtr("GEMINI_TOP_K"),
			MaxOutputTokens: getEnvAsIntPtr("GEMINI_MAX_OUTPUT_TOKENS"),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", session.DefaultTTL),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", session.DefaultCleanupInterval),
		},
	}
}

var validate = validator.New()

// Validate checks the configuration. The API key is only required by the
// commands that talk to the model service, see RequireAPIKey.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RequireAPIKey fails when no Gemini API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("no Gemini API key: set GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	return nil
}

// GeminiClientConfig converts the configuration for gemini.New.
func (c *Config) GeminiClientConfig() gemini.Config {
	return gemini.Config{
		BaseURL:        c.Gemini.BaseURL,
		APIKey:         c.Gemini.APIKey,
		ChatModel:      c.Gemini.ChatModel,
		VisionModel:    c.Gemini.VisionModel,
		TextModel:      c.Gemini.TextModel,
		EmbeddingModel: c.Gemini.EmbeddingModel,
		Timeout:        c.Gemini.Timeout,
		Options: &llm.Options{
			Temperature:     c.Gemini.Temperature,
			TopP:            c.Gemini.TopP,
			TopK:            c.Gemini.TopK,
			MaxOutputTokens: c.Gemini.MaxOutputTokens,
		},
	}
}

// SessionStoreConfig converts the configuration for session.NewStore.
func (c *Config) SessionStoreConfig() session.Config {
	return session.Config{
		TTL:             c.Session.TTL,
		CleanupInterval: c.Session.CleanupInterval,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloatPtr(key string) *float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return &value
	}
	return nil
}

func getEnvAsIntPtr(key string) *int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return &value
	}
	return nil
}
