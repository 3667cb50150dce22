package cmd

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/ui"
)

func tuiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "user",
			Usage: "Load this user's stars on launch",
		},
		&cli.StringFlag{
			Name:  "period",
			Value: "today",
			Usage: "Initial trending period: today, week, month",
		},
		&cli.StringFlag{
			Name:  "language",
			Value: types.LanguageAll,
			Usage: "Initial trending language",
		},
	}
}

func TUICommand() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Start the interactive interface (default)",
		Flags:  tuiFlags(),
		Action: withConfig(runTUI),
	}
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfigFromContext(ctx)
	if cfg == nil {
		return errors.NewConfigError("failed to load configuration", "")
	}

	period, err := types.ParsePeriod(cmd.String("period"))
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeValidation, err.Error())
	}

	if err := logging.InitializeLogger(tuiLogging(cfg.Logging)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	services, err := initializeServices(cfg)
	if err != nil {
		return err
	}

	app := ui.NewApp(ctx, services, ui.Options{
		PageSize: cfg.View.PageSize,
		Username: cmd.String("user"),
		Period:   period,
		Language: cmd.String("language"),
	})

	logging.Info("Starting TUI", "llm_active", services.LLMActive)

	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// tuiLogging keeps logs off stdout while the TUI owns the screen. Output
// other than a file goes to stderr at warn or above.
func tuiLogging(cfg config.LoggingConfig) config.LoggingConfig {
	if strings.EqualFold(cfg.Output, "file") {
		return cfg
	}

	cfg.Output = "stderr"

	switch strings.ToLower(cfg.Level) {
	case "debug", "info":
		cfg.Level = "warn"
	}

	return cfg
}
