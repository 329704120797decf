// Package cli wires the cobra command surface over the session engine.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyittinehtaung/pth-client/internal/config"
	"github.com/pyittinehtaung/pth-client/internal/transport"
)

var (
	flagBaseURL  string
	flagLang     string
	flagNoStream bool
)

var rootCmd = &cobra.Command{
	Use:   "pth",
	Short: "Chat client for the Pyit Tine Htaung banking-safety assistant",
	Long: `pth is a terminal client for the Pyit Tine Htaung assistant.

It keeps multiple local conversation sessions, streams replies as they are
generated, and can submit suspicious text, links or screenshots for scam
analysis.

Quick start:
  pth chat                 # interactive conversation
  pth analyze "is http://bank-verify.top safe?"
  pth upload screenshot.png
  pth health`,
}

// Execute runs the CLI with a signal-aware context.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Backend origin (overrides PTH_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&flagLang, "lang", "", "Language hint: en or my (overrides PTH_LANG)")
	rootCmd.PersistentFlags().BoolVar(&flagNoStream, "no-stream", false, "Use whole-response replies instead of streaming")
}

// loadConfig reads env configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.Backend.BaseURL = flagBaseURL
	}
	if flagLang != "" {
		cfg.Backend.LangHint = flagLang
	}
	if flagNoStream {
		cfg.Send.Streaming = false
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *transport.Client {
	return transport.NewClient(transport.Options{
		BaseURL:         cfg.Backend.BaseURL,
		APIPrefix:       cfg.Backend.APIPrefix,
		Timeout:         cfg.Backend.Timeout,
		IdleTimeout:     cfg.Backend.IdleTimeout,
		LangHint:        cfg.Backend.LangHint,
		AllowAIFallback: cfg.Backend.AllowAI,
	})
}
