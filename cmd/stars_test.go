package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/llm"
	"github.com/kyleking/gh-star-scout/internal/testutil"
	"github.com/kyleking/gh-star-scout/internal/types"
	"github.com/kyleking/gh-star-scout/internal/ui"
)

func defaultStarsOptions(username string) starsOptions {
	return starsOptions{
		Username:           username,
		Sort:               types.SortStarsDesc,
		Page:               1,
		PageSize:           12,
		InsightConcurrency: 2,
	}
}

func runStarsJSON(t *testing.T, services ui.Services, opts starsOptions) (starsPage, string) {
	t.Helper()

	var out, status bytes.Buffer

	opts.JSON = true
	require.NoError(t, runStars(context.Background(), &out, &status, services, opts))

	var page starsPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))

	return page, status.String()
}

func repoIDs(repos []types.Repo) []string {
	return testutil.IDs(repos)
}

func TestRunStars_TextOutput(t *testing.T) {
	gh := newMockGitHub(t, "octocat", []mockStar{
		newMockStar(1, "cli/cli", 38500, "Go", "GitHub's official command line tool"),
		newMockStar(2, "charmbracelet/bubbletea", 29000, "Go", ""),
		newMockStar(3, "sharkdp/bat", 50000, "", "A cat clone with wings"),
	})
	services := testServices(gh, testutil.NewMockProvider())

	var out, status bytes.Buffer

	err := runStars(context.Background(), &out, &status, services, defaultStarsOptions("octocat"))
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "octocat: 3 total stars, page 1 of 1 (Stars: High to Low)")
	assert.Contains(t, text, "  1. sharkdp/bat ★ 50000\n")
	assert.Contains(t, text, "  2. cli/cli ★ 38500 [Go]")
	assert.Contains(t, text, "     GitHub's official command line tool")
	assert.Contains(t, text, "     https://github.com/charmbracelet/bubbletea")
	assert.Less(t, strings.Index(text, "sharkdp/bat"), strings.Index(text, "charmbracelet/bubbletea"))
}

func TestRunStars_EndToEndPaging(t *testing.T) {
	gh := newMockGitHub(t, "octocat", generatedStars(150))
	services := testServices(gh, testutil.NewMockProvider())

	page, _ := runStarsJSON(t, services, defaultStarsOptions("octocat"))

	assert.Equal(t, 150, page.Total)
	assert.Equal(t, 13, page.PageCount)
	require.Len(t, page.Repos, 12)
	assert.Equal(t, "150", page.Repos[0].ID, "page 1 holds the most starred repositories")
	assert.Equal(t, "139", page.Repos[11].ID)
	assert.EqualValues(t, 2, gh.requests.Load(), "a short second page ends the fetch")

	opts := defaultStarsOptions("octocat")
	opts.Page = 13
	last, _ := runStarsJSON(t, services, opts)

	assert.Equal(t, 13, last.Page)
	assert.Len(t, last.Repos, 6)
}

func TestRunStars_SortOrders(t *testing.T) {
	gh := newMockGitHub(t, "octocat", []mockStar{
		newMockStar(10, "a/mid", 50, "Go", ""),
		newMockStar(20, "b/low", 5, "Go", ""),
		newMockStar(30, "c/high", 500, "Go", ""),
	})
	services := testServices(gh, testutil.NewMockProvider())

	tests := []struct {
		order types.SortOrder
		want  []string
	}{
		{types.SortStarsDesc, []string{"30", "10", "20"}},
		{types.SortStarsAsc, []string{"20", "10", "30"}},
		{types.SortRecent, []string{"10", "20", "30"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			opts := defaultStarsOptions("octocat")
			opts.Sort = tt.order

			page, _ := runStarsJSON(t, services, opts)

			assert.Equal(t, tt.want, repoIDs(page.Repos))
			assert.Equal(t, string(tt.order), page.Sort)
		})
	}
}

func TestRunStars_SemanticSearch(t *testing.T) {
	gh := newMockGitHub(t, "octocat", generatedStars(5))
	provider := testutil.NewMockProvider(testutil.WithText(`{"ids": ["4", "missing", 2]}`))
	services := testServices(gh, provider)

	opts := defaultStarsOptions("octocat")
	opts.Search = "terminal tools"
	opts.Sort = types.SortRecent

	page, _ := runStarsJSON(t, services, opts)

	assert.Equal(t, "terminal tools", page.Query)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Shown)
	assert.ElementsMatch(t, []string{"4", "2"}, repoIDs(page.Repos))
	require.Equal(t, 1, provider.CallCount())
	assert.True(t, provider.LastRequest().JSON)
	assert.Contains(t, provider.LastRequest().Prompt, `"terminal tools"`)
}

func TestRunStars_SearchUnavailable(t *testing.T) {
	gh := newMockGitHub(t, "octocat", generatedStars(3))
	services := testServices(gh, testutil.NewMockProvider(testutil.WithText("not json")))

	opts := defaultStarsOptions("octocat")
	opts.Search = "anything"

	var out, status bytes.Buffer
	err := runStars(context.Background(), &out, &status, services, opts)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeLLM))
}

func TestRunStars_SearchFallsBackToFuzzy(t *testing.T) {
	gh := newMockGitHub(t, "octocat", []mockStar{
		newMockStar(1, "junegunn/fzf", 60000, "Go", "A command-line fuzzy finder"),
		newMockStar(2, "sharkdp/bat", 50000, "Rust", "A cat clone with wings"),
	})
	provider := testutil.NewMockProvider(testutil.Unavailable())
	services := testServices(gh, provider)

	opts := defaultStarsOptions("octocat")
	opts.Search = "fzf"

	page, status := runStarsJSON(t, services, opts)

	assert.Equal(t, []string{"1"}, repoIDs(page.Repos))
	assert.Contains(t, status, fuzzyFallbackNotice)
	assert.Zero(t, provider.CallCount())
}

func TestRunStars_Fuzzy(t *testing.T) {
	gh := newMockGitHub(t, "octocat", []mockStar{
		newMockStar(1, "junegunn/fzf", 60000, "Go", "A command-line fuzzy finder"),
		newMockStar(2, "sharkdp/bat", 50000, "Rust", "A cat clone with wings"),
	})
	provider := testutil.NewMockProvider()
	services := testServices(gh, provider)

	opts := defaultStarsOptions("octocat")
	opts.Fuzzy = "wings"

	page, _ := runStarsJSON(t, services, opts)

	assert.Equal(t, []string{"2"}, repoIDs(page.Repos))
	assert.Equal(t, "wings", page.Query)
	assert.Zero(t, provider.CallCount(), "fuzzy filtering never calls the LLM")
}

func TestRunStars_Insights(t *testing.T) {
	gh := newMockGitHub(t, "octocat", generatedStars(15))
	provider := testutil.NewMockProvider(testutil.WithResponder(func(req llm.Request) (llm.Response, error) {
		return llm.Response{Text: "  Worth a look.  "}, nil
	}))
	services := testServices(gh, provider)

	opts := defaultStarsOptions("octocat")
	opts.Insights = true

	page, _ := runStarsJSON(t, services, opts)

	require.Len(t, page.Repos, 12)

	for _, r := range page.Repos {
		assert.Equal(t, "Worth a look.", r.AIInsight, r.FullName)
	}

	assert.Equal(t, 12, provider.CallCount(), "only the visible page gets insights")
}

func TestRunStars_BlankQueriesAreIgnored(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*starsOptions)
	}{
		{name: "blank search", mutate: func(o *starsOptions) { o.Search = "   " }},
		{name: "blank fuzzy", mutate: func(o *starsOptions) { o.Fuzzy = "\t" }},
		{name: "blank search with fuzzy", mutate: func(o *starsOptions) {
			o.Search = " "
			o.Fuzzy = "repo1"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := newMockGitHub(t, "octocat", generatedStars(30))
			provider := testutil.NewMockProvider(testutil.WithText(`{"ids": []}`))

			opts := defaultStarsOptions("octocat")
			tt.mutate(&opts)

			page, _ := runStarsJSON(t, testServices(gh, provider), opts)

			assert.Equal(t, 30, page.Total)
			assert.Zero(t, provider.CallCount(), "a blank query never reaches the LLM")

			if strings.TrimSpace(opts.Fuzzy) == "" {
				assert.Equal(t, 30, page.Shown)
				assert.Empty(t, page.Query)
				assert.Len(t, page.Repos, 12)
			}
		})
	}
}

func TestRunStars_InsightsRequireProvider(t *testing.T) {
	gh := newMockGitHub(t, "octocat", generatedStars(3))
	provider := testutil.NewMockProvider(testutil.Unavailable())

	opts := defaultStarsOptions("octocat")
	opts.Insights = true

	var out, status bytes.Buffer
	err := runStars(context.Background(), &out, &status, testServices(gh, provider), opts)

	require.Error(t, err)
	assert.Equal(t, errors.ErrTypeConfig, errors.GetType(err))
	assert.Empty(t, out.String())
	assert.Zero(t, provider.CallCount())
	assert.Zero(t, gh.requests.Load(), "the provider check runs before fetching stars")
}

func TestRunStars_Errors(t *testing.T) {
	gh := newMockGitHub(t, "octocat", generatedStars(3))
	services := testServices(gh, testutil.NewMockProvider())

	tests := []struct {
		name    string
		mutate  func(*starsOptions)
		errType errors.ErrorType
	}{
		{
			name:    "blank username",
			mutate:  func(o *starsOptions) { o.Username = "  " },
			errType: errors.ErrTypeValidation,
		},
		{
			name: "search and fuzzy together",
			mutate: func(o *starsOptions) {
				o.Search = "a"
				o.Fuzzy = "b"
			},
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "page out of range",
			mutate:  func(o *starsOptions) { o.Page = 2 },
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "page zero",
			mutate:  func(o *starsOptions) { o.Page = 0 },
			errType: errors.ErrTypeValidation,
		},
		{
			name:    "unknown user",
			mutate:  func(o *starsOptions) { o.Username = "ghost" },
			errType: errors.ErrTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultStarsOptions("octocat")
			tt.mutate(&opts)

			var out, status bytes.Buffer
			err := runStars(context.Background(), &out, &status, services, opts)

			require.Error(t, err)
			assert.Equal(t, tt.errType, errors.GetType(err))
			assert.Empty(t, out.String())
		})
	}
}

func TestRunStars_EmptyResult(t *testing.T) {
	gh := newMockGitHub(t, "octocat", nil)
	services := testServices(gh, testutil.NewMockProvider())

	var out, status bytes.Buffer
	require.NoError(t, runStars(context.Background(), &out, &status, services, defaultStarsOptions("octocat")))

	assert.Contains(t, out.String(), "octocat: 0 total stars, page 1 of 1")
	assert.Contains(t, out.String(), "No repositories to show.")
}
