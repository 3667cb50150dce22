package trending

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kyleking/gh-star-scout/internal/llm"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/types"
)

// Status describes how a trending fetch ended
type Status string

const (
	StatusOK Status = "ok"
	// StatusEmpty means the response parsed but listed no repositories
	StatusEmpty Status = "empty"
	// StatusUnavailable means the request or its parsing failed
	StatusUnavailable Status = "unavailable"
)

// Result is the outcome of one trending fetch. Repos and Sources are never nil.
type Result struct {
	Repos   []types.Repo
	Sources []types.Source
	Status  Status
}

// Fetcher asks a grounded LLM for the currently trending repositories
type Fetcher struct {
	provider llm.Provider
	now      func() time.Time
}

// NewFetcher creates a trending fetcher on top of provider
func NewFetcher(provider llm.Provider) *Fetcher {
	return &Fetcher{
		provider: provider,
		now:      time.Now,
	}
}

type trendingEntry struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Language    string  `json:"language"`
	Stars       float64 `json:"stars"`
	URL         string  `json:"url"`
}

type trendingPayload struct {
	Repos *[]trendingEntry `json:"repos"`
}

// BuildPrompt renders the trending request for period and language
func BuildPrompt(period types.Period, language string) string {
	langQuery := ""
	if language = types.NormalizeLanguage(language); language != types.LanguageAll {
		langQuery = " written in " + language
	}

	return fmt.Sprintf(`Find the current trending GitHub repositories for %s%s.
Search sources like 'github.com/trending' to get real-time data.

Return a list of at least 10 repositories.
For each repository, provide:
- Name (format: owner/repo)
- A short description
- The main programming language
- Approximate star count (number)
- URL to the repository

You must return the data strictly in JSON format matching this schema:
{
  "repos": [
    {
      "name": "owner/repo",
      "description": "string",
      "language": "string",
      "stars": number,
      "url": "https://github.com/..."
    }
  ]
}`, strings.ToLower(string(period)), langQuery)
}

// Fetch never fails: any error degrades to an empty Result with StatusUnavailable
func (f *Fetcher) Fetch(ctx context.Context, period types.Period, language string) Result {
	logger := logging.WithFields(map[string]interface{}{
		"period":   string(period),
		"language": language,
	})

	resp, err := f.provider.Complete(ctx, llm.Request{
		Prompt:    BuildPrompt(period, language),
		WebSearch: true,
		JSON:      true,
	})
	if err != nil {
		logger.Warn("Trending request failed", "error", err)
		return emptyResult(StatusUnavailable)
	}

	var payload trendingPayload
	if err := llm.DecodeJSON(resp.Text, &payload); err != nil {
		logger.Warn("Trending response could not be parsed", "error", err)
		return emptyResult(StatusUnavailable)
	}

	if payload.Repos == nil {
		logger.Warn("Trending response has no repos field")
		return emptyResult(StatusUnavailable)
	}

	result := Result{
		Repos:   toRecords(*payload.Repos, f.now()),
		Sources: filterSources(resp.Sources),
		Status:  StatusOK,
	}

	if len(result.Repos) == 0 {
		result.Status = StatusEmpty
	}

	logger.Info("Trending fetched",
		"status", string(result.Status),
		"repos", len(result.Repos),
		"sources", len(result.Sources))

	return result
}

func emptyResult(status Status) Result {
	return Result{
		Repos:   []types.Repo{},
		Sources: []types.Source{},
		Status:  status,
	}
}

func toRecords(entries []trendingEntry, fetchedAt time.Time) []types.Repo {
	millis := fetchedAt.UnixMilli()
	repos := make([]types.Repo, 0, len(entries))

	for i, e := range entries {
		login := ownerLogin(e.Name)

		repos = append(repos, types.Repo{
			ID:          fmt.Sprintf("ai-trend-%d-%d", i, millis),
			FullName:    e.Name,
			Description: e.Description,
			URL:         e.URL,
			Language:    e.Language,
			Stars:       max(int(e.Stars), 0),
			Owner: types.Owner{
				Login:     login,
				AvatarURL: fmt.Sprintf("https://github.com/%s.png", login),
			},
		})
	}

	return repos
}

// ownerLogin is the part of "owner/name" before the slash, or "unknown"
func ownerLogin(fullName string) string {
	login, _, _ := strings.Cut(fullName, "/")
	if login = strings.TrimSpace(login); login == "" {
		return "unknown"
	}

	return login
}

func filterSources(sources []types.Source) []types.Source {
	out := make([]types.Source, 0, len(sources))
	for _, s := range sources {
		if s.URI == "" {
			continue
		}

		out = append(out, s)
	}

	return out
}
