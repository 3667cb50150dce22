package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/errors"
)

func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:        "config",
		Usage:       "Display the active configuration",
		Description: `Show the current active configuration including all settings from file, environment variables, and command-line flags.`,
		Action: withConfig(func(ctx context.Context, _ *cli.Command) error {
			return RunConfigWithConfig(os.Stdout, getConfigFromContext(ctx))
		}),
	}
}

// RunConfigWithConfig prints cfg to w. Secrets are only reported as set or unset.
func RunConfigWithConfig(w io.Writer, cfg *config.Config) error {
	if cfg == nil {
		return errors.NewConfigError("failed to load configuration", "")
	}

	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w, "Active Configuration:")

	fmt.Fprintln(w, "\nGitHub:")
	fmt.Fprintf(w, "  Host: %s\n", cfg.GitHub.Host)
	fmt.Fprintf(w, "  API URL: %s\n", cfg.GitHub.APIURL)
	fmt.Fprintf(w, "  Token: %s\n", secretState(cfg.GitHub.Token))
	fmt.Fprintf(w, "  Use gh Auth: %t\n", cfg.GitHub.UseGHAuth)
	fmt.Fprintf(w, "  Page Interval: %s\n", cfg.GitHub.PageInterval)
	fmt.Fprintf(w, "  Timeout: %s\n", cfg.GitHub.Timeout)

	fmt.Fprintln(w, "\nLLM:")
	fmt.Fprintf(w, "  Provider: %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  Fallback: %s\n", strings.Join(cfg.LLM.Fallback, ", "))
	fmt.Fprintf(w, "  Gemini API Key: %s\n", secretState(cfg.LLM.GeminiAPIKey))
	fmt.Fprintf(w, "  Gemini Model: %s\n", cfg.LLM.GeminiModel)
	fmt.Fprintf(w, "  OpenAI API Key: %s\n", secretState(cfg.LLM.OpenAIAPIKey))
	fmt.Fprintf(w, "  OpenAI Model: %s\n", cfg.LLM.OpenAIModel)
	fmt.Fprintf(w, "  OpenAI Base URL: %s\n", cfg.LLM.OpenAIBaseURL)
	fmt.Fprintf(w, "  Timeout: %s\n", cfg.LLM.Timeout)

	fmt.Fprintln(w, "\nView:")
	fmt.Fprintf(w, "  Page Size: %d\n", cfg.View.PageSize)
	fmt.Fprintf(w, "  Insight Concurrency: %d\n", cfg.View.InsightConcurrency)

	fmt.Fprintln(w, "\nLogging:")
	fmt.Fprintf(w, "  Level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "  Output: %s\n", cfg.Logging.Output)

	if cfg.Logging.Output == "file" {
		fmt.Fprintf(w, "  File: %s\n", cfg.Logging.File)
	}

	fmt.Fprintf(w, "  Add Source: %t\n", cfg.Logging.AddSource)

	fmt.Fprintln(w, "\nDebug:")
	fmt.Fprintf(w, "  Enabled: %t\n", cfg.Debug.Enabled)
	fmt.Fprintf(w, "  Verbose: %t\n", cfg.Debug.Verbose)
	fmt.Fprintf(w, "  Trace API: %t\n", cfg.Debug.TraceAPI)

	// Raw JSON omits secrets through their json:"-" tags
	if cfg.Debug.Enabled {
		fmt.Fprintln(w, "\nRaw Configuration (JSON):")
		fmt.Fprintln(w, "==========================")

		jsonData, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

		fmt.Fprintln(w, string(jsonData))
	}

	return nil
}

func secretState(value string) string {
	if value == "" {
		return "not set"
	}

	return "set"
}
