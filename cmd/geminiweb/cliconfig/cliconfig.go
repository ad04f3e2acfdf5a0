// Package cliconfig holds the flags shared by every geminiweb command and
// turns them, together with the environment, into a configuration and logger.
package cliconfig

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/geminiweb/internal/config"
	"github.com/papercomputeco/geminiweb/pkg/gemini"
	"github.com/papercomputeco/geminiweb/pkg/logger"
)

// Flags are the command line overrides of the environment configuration.
type Flags struct {
	Debug   bool
	LogFile string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Register adds the shared flags to cmd.
func (f *Flags) Register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&f.LogFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().StringVar(&f.APIKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY)")
	cmd.Flags().StringVar(&f.BaseURL, "base-url", "", "Gemini REST API base URL")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "HTTP timeout for model calls (default 5m)")
}

// Load reads the environment configuration, applies the flags that were set
// on cmd, validates the result and builds the logger.
func (f *Flags) Load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.App.Debug = f.Debug
	}
	if flags.Changed("log-file") {
		cfg.App.LogFilePath = f.LogFile
	}
	if flags.Changed("api-key") {
		cfg.Gemini.APIKey = f.APIKey
	}
	if flags.Changed("base-url") {
		cfg.Gemini.BaseURL = f.BaseURL
	}
	if flags.Changed("timeout") {
		cfg.Gemini.Timeout = f.Timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger(logger.Options{
		Debug:    cfg.App.Debug,
		FilePath: cfg.App.LogFilePath,
	})
	return cfg, log, nil
}

// NewClient loads the configuration and builds a Gemini client, failing when
// no API key is configured.
func (f *Flags) NewClient(cmd *cobra.Command) (*gemini.Client, *zap.Logger, error) {
	cfg, log, err := f.Load(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	return gemini.New(cfg.GeminiClientConfig(), log), log, nil
}
