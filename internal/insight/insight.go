package insight

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kyleking/gh-star-scout/internal/llm"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/types"
)

const (
	// NoInsight is returned when the provider answers with an empty text
	NoInsight = "No insight available."
	// Failed is returned when the request itself fails
	Failed = "Could not generate insight."

	defaultConcurrency = 4
)

// Generator produces one-sentence summaries of repositories
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a generator on top of provider
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// BuildPrompt renders the insight request for one repository
func BuildPrompt(fullName, description string) string {
	return fmt.Sprintf(
		"Explain what the GitHub repository %q does in one short, catchy sentence based on this description: %q. "+
			"Focus on its value proposition.",
		fullName, description,
	)
}

// Generate never fails; failures become one of the fallback sentences
func (g *Generator) Generate(ctx context.Context, fullName, description string) string {
	resp, err := g.provider.Complete(ctx, llm.Request{
		Prompt: BuildPrompt(fullName, description),
	})
	if err != nil {
		logging.Warn("Insight request failed", "repo", fullName, "error", err)
		return Failed
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return NoInsight
	}

	return text
}

// Ensure returns the record's insight, generating and attaching it on first use.
// A record that already has one is returned as is without a request. Text
// generated after ctx is done is returned but not attached.
func (g *Generator) Ensure(ctx context.Context, repo *types.Repo) string {
	if repo.HasInsight() {
		return repo.AIInsight
	}

	text := g.Generate(ctx, repo.FullName, repo.Description)
	if ctx.Err() != nil {
		return text
	}

	repo.SetInsight(text)

	return repo.AIInsight
}

// EnsureAll runs Ensure over repos with at most concurrency requests in flight.
// Each goroutine writes only its own record.
func (g *Generator) EnsureAll(ctx context.Context, repos []*types.Repo, concurrency int) error {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for _, repo := range repos {
		if repo == nil || repo.HasInsight() {
			continue
		}

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			g.Ensure(ctx, repo)

			return ctx.Err()
		})
	}

	return eg.Wait()
}
