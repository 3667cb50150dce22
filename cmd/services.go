package cmd

import (
	"fmt"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/github"
	"github.com/kyleking/gh-star-scout/internal/insight"
	"github.com/kyleking/gh-star-scout/internal/llm"
	"github.com/kyleking/gh-star-scout/internal/search"
	"github.com/kyleking/gh-star-scout/internal/trending"
	"github.com/kyleking/gh-star-scout/internal/ui"
)

// initializeServices builds the star fetcher and the LLM-backed components from cfg
func initializeServices(cfg *config.Config) (ui.Services, error) {
	client, err := github.NewRESTClient(cfg.GitHub)
	if err != nil {
		return ui.Services{}, fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	fetcher := github.NewStarFetcher(client,
		github.WithPageInterval(cfg.GitHub.PageIntervalDuration()),
		github.WithTrace(cfg.Debug.TraceAPI),
	)

	return newServices(fetcher, llm.NewManagerFromConfig(cfg.LLM)), nil
}

func newServices(fetcher *github.StarFetcher, provider llm.Provider) ui.Services {
	return ui.Services{
		Stars:     fetcher,
		Trending:  trending.NewFetcher(provider),
		Searcher:  search.NewSearcher(provider),
		Insights:  insight.NewGenerator(provider),
		LLMActive: provider.Available(),
	}
}
