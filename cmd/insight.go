package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/ui"
)

func InsightCommand() *cli.Command {
	return &cli.Command{
		Name:        "insight",
		Usage:       "Generate a one-line insight for a repository",
		Description: `Ask the LLM for a short, punchy sentence on why <owner/repo> is interesting.`,
		ArgsUsage:   " <owner/repo>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "description",
				Usage: "Repository description to include in the prompt",
			},
		},
		Action: withConfig(func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("expected exactly 1 argument, got %d", args.Len())
			}

			services, err := initializeServices(getConfigFromContext(ctx))
			if err != nil {
				return err
			}

			return runInsight(ctx, os.Stdout, services, args.First(), cmd.String("description"))
		}),
	}
}

func runInsight(ctx context.Context, out io.Writer, services ui.Services, fullName, description string) error {
	fullName = strings.TrimSpace(fullName)

	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return errors.Newf(errors.ErrTypeValidation, "repository must be in owner/repo form, got %q", fullName)
	}

	if !services.SemanticSearchAvailable() {
		return errNoProvider()
	}

	fmt.Fprintf(out, "%s: %s\n", fullName, services.Insight(ctx, fullName, description))

	return nil
}

// errNoProvider is returned by commands that cannot work without an LLM
func errNoProvider() error {
	return errors.New(errors.ErrTypeConfig, "no LLM provider configured").
		WithSuggestion("Set GEMINI_API_KEY or OPENAI_API_KEY")
}
