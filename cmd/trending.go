package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/formatter"
	"github.com/kyleking/gh-star-scout/internal/trending"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/ui"
)

func TrendingCommand() *cli.Command {
	return &cli.Command{
		Name:  "trending",
		Usage: "Ask the LLM for trending GitHub repositories",
		Description: `Search the web through a grounded LLM for repositories trending in a period,
optionally restricted to one language. Citations are printed after the list.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "period",
				Value: "today",
				Usage: "Time window: today, week, month",
			},
			&cli.StringFlag{
				Name:  "language",
				Value: types.LanguageAll,
				Usage: "Language filter, or All",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
			&cli.BoolFlag{
				Name:  "long",
				Usage: "Use long-form output format",
			},
		},
		Action: withConfig(func(ctx context.Context, cmd *cli.Command) error {
			period, err := types.ParsePeriod(cmd.String("period"))
			if err != nil {
				return errors.Wrap(err, errors.ErrTypeValidation, err.Error())
			}

			services, err := initializeServices(getConfigFromContext(ctx))
			if err != nil {
				return err
			}

			return runTrending(ctx, os.Stdout, services, trendingOptions{
				Period:   period,
				Language: cmd.String("language"),
				JSON:     cmd.Bool("json"),
				Format:   formatter.ParseFormat(cmd.Bool("long")),
			})
		}),
	}
}

// trendingOutput is the JSON shape of a trending result
type trendingOutput struct {
	Period   string         `json:"period"`
	Language string         `json:"language"`
	Status   string         `json:"status"`
	Repos    []types.Repo   `json:"repos"`
	Sources  []types.Source `json:"sources"`
}

// trendingOptions holds the flags of the trending command
type trendingOptions struct {
	Period   types.Period
	Language string
	JSON     bool
	Format   formatter.OutputFormat
}

func runTrending(ctx context.Context, out io.Writer, services ui.Services, opts trendingOptions) error {
	if !services.SemanticSearchAvailable() {
		return errors.New(errors.ErrTypeConfig, "no LLM provider configured").
			WithSuggestion("Set GEMINI_API_KEY to enable grounded trending search")
	}

	period := opts.Period
	language := types.NormalizeLanguage(opts.Language)
	result := services.FetchTrending(ctx, period, language)

	if result.Status == trending.StatusUnavailable {
		return errors.New(errors.ErrTypeLLM, "failed to load trending data, please try again")
	}

	if opts.JSON {
		return writeJSON(out, trendingOutput{
			Period:   string(period),
			Language: language,
			Status:   string(result.Status),
			Repos:    result.Repos,
			Sources:  result.Sources,
		})
	}

	fmt.Fprintf(out, "Trending %s · %s\n\n", period, language)

	if len(result.Repos) == 0 {
		fmt.Fprintln(out, "No trending repositories found.")
		return nil
	}

	f := formatter.NewFormatter()
	fmt.Fprintln(out, f.FormatList(result.Repos, 0, opts.Format))

	if sources := f.FormatSources(result.Sources); sources != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, sources)
	}

	return nil
}
