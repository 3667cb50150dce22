package ui

import (
	"context"

	"github.com/kyleking/gh-star-scout/internal/github"
	"github.com/kyleking/gh-star-scout/internal/insight"
	"github.com/kyleking/gh-star-scout/internal/search"
	"github.com/kyleking/gh-star-scout/internal/trending"
	"github.com/kyleking/gh-star-scout/internal/types"
)

// Backend is everything the TUI asks of the outside world
type Backend interface {
	FetchStars(ctx context.Context, username string, onProgress func(total int)) ([]types.Repo, error)
	FetchTrending(ctx context.Context, period types.Period, language string) trending.Result
	Search(ctx context.Context, query string, records []types.Repo) search.Outcome
	Insight(ctx context.Context, fullName, description string) string
	// SemanticSearchAvailable reports whether an LLM provider is configured
	SemanticSearchAvailable() bool
}

// Services wires the domain components into a Backend
type Services struct {
	Stars     *github.StarFetcher
	Trending  *trending.Fetcher
	Searcher  *search.Searcher
	Insights  *insight.Generator
	LLMActive bool
}

func (s Services) FetchStars(ctx context.Context, username string, onProgress func(int)) ([]types.Repo, error) {
	return s.Stars.FetchAllStars(ctx, username, onProgress)
}

func (s Services) FetchTrending(ctx context.Context, period types.Period, language string) trending.Result {
	return s.Trending.Fetch(ctx, period, language)
}

func (s Services) Search(ctx context.Context, query string, records []types.Repo) search.Outcome {
	return s.Searcher.Search(ctx, query, records)
}

func (s Services) Insight(ctx context.Context, fullName, description string) string {
	return s.Insights.Generate(ctx, fullName, description)
}

func (s Services) SemanticSearchAvailable() bool {
	return s.LLMActive
}
