package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
)

// Version is set at build time
var Version = "dev"

type configKey struct{}

// NewRootCommand builds the command tree. Without a subcommand the TUI starts.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "gh-star-scout",
		Usage:   "Browse trending repositories and search your GitHub stars",
		Version: Version,
		Description: `gh-star-scout lists the repositories a GitHub user has starred and asks an LLM
for trending repositories, semantic search over the stars and one-line insights.

Examples:
  gh star-scout                               # interactive TUI
  gh star-scout stars octocat --sort asc
  gh star-scout stars octocat --search "terminal tools"
  gh star-scout trending --period week --language Go`,
		Flags:  append(globalFlags(), tuiFlags()...),
		Action: withConfig(runTUI),
		Commands: []*cli.Command{
			StarsCommand(),
			TrendingCommand(),
			InsightCommand(),
			TUICommand(),
			ConfigCommand(),
		},
	}
}

// Execute runs the command tree against args
func Execute(ctx context.Context, args []string) error {
	return NewRootCommand().Run(ctx, args)
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Show detailed processing steps",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug mode",
		},
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Preferred LLM provider: gemini, openai",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "GitHub token (defaults to the gh CLI login)",
		},
	}
}

func flagOverrides(cmd *cli.Command) map[string]interface{} {
	return map[string]interface{}{
		"log-level":  cmd.String("log-level"),
		"log-format": cmd.String("log-format"),
		"verbose":    cmd.Bool("verbose"),
		"debug":      cmd.Bool("debug"),
		"provider":   cmd.String("provider"),
		"token":      cmd.String("token"),
	}
}

// withConfig loads the configuration, starts logging and stores the
// configuration in the context handed to action
func withConfig(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.LoadConfigWithOverrides(flagOverrides(cmd))
		if err != nil {
			return errors.Wrap(err, errors.ErrTypeConfig, "failed to load configuration").
				WithSuggestion("Run 'gh star-scout config' to inspect the active settings")
		}

		if err := logging.InitializeLogger(cfg.Logging); err != nil {
			logging.SetupFallbackLogger()
			logging.Warn("Falling back to stderr logging", "error", err)
		}

		logging.Debug("Configuration loaded",
			"provider", cfg.LLM.Provider,
			"github_host", cfg.GitHub.Host,
			"page_size", cfg.View.PageSize,
		)

		return action(context.WithValue(ctx, configKey{}, cfg), cmd)
	}
}

// getConfigFromContext returns the configuration stored by withConfig, or nil
func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}
