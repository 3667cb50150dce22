package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/formatter"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/search"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/ui"
	"github.com/kyleking/gh-star-scout/internal/view"
)

const fuzzyFallbackNotice = "No LLM provider configured; using fuzzy filter instead."

// starsOptions holds the flags of the stars command
type starsOptions struct {
	Username           string
	Sort               types.SortOrder
	Page               int
	PageSize           int
	Search             string
	Fuzzy              string
	Insights           bool
	InsightConcurrency int
	JSON               bool
	Format             formatter.OutputFormat
}

func StarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stars",
		Usage: "List the repositories a GitHub user has starred",
		Description: `Fetch every repository starred by <username> (up to 2000) and print one page.

Examples:
  gh star-scout stars octocat
  gh star-scout stars octocat --sort recent --page 2
  gh star-scout stars octocat --search "static site generators"
  gh star-scout stars octocat --fuzzy bubbletea --insights`,
		ArgsUsage: " <username>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sort",
				Value: string(types.SortStarsDesc),
				Usage: "Sort order: desc, asc, recent",
			},
			&cli.IntFlag{
				Name:  "page",
				Value: 1,
				Usage: "Page to display",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "Semantic search over the stars using the configured LLM",
			},
			&cli.StringFlag{
				Name:  "fuzzy",
				Usage: "Fuzzy filter by name and description",
			},
			&cli.BoolFlag{
				Name:  "insights",
				Usage: "Generate a one-line insight for every repository on the page",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the page as JSON",
			},
			&cli.BoolFlag{
				Name:  "long",
				Usage: "Use long-form output format",
			},
		},
		Action: withConfig(func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("expected exactly 1 argument, got %d", args.Len())
			}

			order, err := types.ParseSortOrder(cmd.String("sort"))
			if err != nil {
				return errors.Wrap(err, errors.ErrTypeValidation, err.Error())
			}

			cfg := getConfigFromContext(ctx)

			services, err := initializeServices(cfg)
			if err != nil {
				return err
			}

			opts := starsOptions{
				Username:           args.First(),
				Sort:               order,
				Page:               int(cmd.Int("page")),
				PageSize:           cfg.View.PageSize,
				Search:             cmd.String("search"),
				Fuzzy:              cmd.String("fuzzy"),
				Insights:           cmd.Bool("insights"),
				InsightConcurrency: cfg.View.InsightConcurrency,
				JSON:               cmd.Bool("json"),
				Format:             formatter.ParseFormat(cmd.Bool("long")),
			}

			return runStars(ctx, os.Stdout, os.Stderr, services, opts)
		}),
	}
}

// starsPage is the JSON shape of one page of stars
type starsPage struct {
	Username  string       `json:"username"`
	Total     int          `json:"total"`
	Shown     int          `json:"shown"`
	Page      int          `json:"page"`
	PageCount int          `json:"page_count"`
	Sort      string       `json:"sort"`
	Query     string       `json:"query,omitempty"`
	Repos     []types.Repo `json:"repos"`
}

func runStars(ctx context.Context, out, status io.Writer, services ui.Services, opts starsOptions) error {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		return errors.New(errors.ErrTypeValidation, "username must not be empty")
	}

	query := strings.TrimSpace(opts.Search)
	filter := strings.TrimSpace(opts.Fuzzy)

	if query != "" && filter != "" {
		return errors.New(errors.ErrTypeValidation, "--search and --fuzzy cannot be combined")
	}

	if opts.Insights && !services.SemanticSearchAvailable() {
		return errNoProvider()
	}

	progress := newProgressReporter(status, "Fetching starred repositories...")
	progress.Start()

	var repos []types.Repo

	err := logging.Timed("fetch_stars", func() error {
		var fetchErr error
		repos, fetchErr = services.FetchStars(ctx, username, progress.Update)

		return fetchErr
	})

	progress.Stop()

	if err != nil {
		return err
	}

	state := view.NewState(opts.PageSize).WithFullList(repos).WithSort(opts.Sort)

	switch {
	case query != "" && !services.SemanticSearchAvailable():
		fmt.Fprintln(status, fuzzyFallbackNotice)
		state = state.WithDisplayList(query, search.Fuzzy(query, repos))

	case query != "":
		outcome := services.Search(ctx, query, repos)

		switch outcome.Status {
		case search.StatusUnavailable:
			return errors.New(errors.ErrTypeLLM, "search is unavailable right now").
				WithSuggestion("Try --fuzzy for a local filter")
		case search.StatusSkipped:
		default:
			state = state.WithDisplayList(query, search.Resolve(outcome.IDs, repos))
		}

	case filter != "":
		state = state.WithDisplayList(filter, search.Fuzzy(filter, repos))
	}

	if opts.Page != 1 {
		moved := state.GoToPage(opts.Page)
		if moved.Page != opts.Page {
			return errors.Newf(errors.ErrTypeValidation, "page %d is out of range (1-%d)", opts.Page, state.PageCount())
		}

		state = moved
	}

	visible := state.Visible()

	if opts.Insights && len(visible) > 0 {
		targets := make([]*types.Repo, len(visible))
		for i := range visible {
			targets[i] = &visible[i]
		}

		if err := services.Insights.EnsureAll(ctx, targets, opts.InsightConcurrency); err != nil {
			return err
		}
	}

	summary := state.Summary()

	if opts.JSON {
		return writeJSON(out, starsPage{
			Username:  username,
			Total:     summary.Total,
			Shown:     summary.Shown,
			Page:      summary.Page,
			PageCount: summary.PageCount,
			Sort:      string(summary.Sort),
			Query:     summary.Query,
			Repos:     visible,
		})
	}

	fmt.Fprintf(out, "%s: %d total stars, page %d of %d (%s)\n",
		username, summary.Total, summary.Page, summary.PageCount, summary.Sort.Label())

	if summary.Query != "" {
		fmt.Fprintf(out, "%d matching %q\n", summary.Shown, summary.Query)
	}

	if len(visible) == 0 {
		fmt.Fprintln(out, "No repositories to show.")
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.NewFormatter().FormatList(visible, (summary.Page-1)*state.PageSize(), opts.Format))

	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}

	return nil
}
