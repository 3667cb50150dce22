package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/kyleking/gh-star-scout/internal/llm"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/types"
)

// Status describes how a search ended
type Status string

const (
	StatusOK Status = "ok"
	// StatusEmptyMatch means the provider answered but matched nothing
	StatusEmptyMatch Status = "empty_match"
	// StatusUnavailable means the request or its parsing failed
	StatusUnavailable Status = "unavailable"
	// StatusSkipped means no request was made for a blank query or empty list
	StatusSkipped Status = "skipped"
)

// Outcome is the ranked list of matching ids. IDs is never nil.
type Outcome struct {
	IDs    []string
	Status Status
}

// Searcher ranks a user's starred repositories against a natural-language query
type Searcher struct {
	provider llm.Provider
}

// NewSearcher creates a searcher on top of provider
func NewSearcher(provider llm.Provider) *Searcher {
	return &Searcher{provider: provider}
}

type repoContext struct {
	ID  string `json:"id"`
	Txt string `json:"txt"`
}

type idsPayload struct {
	IDs *[]json.RawMessage `json:"ids"`
}

// contextLine is the compact text sent to the model for one repository
func contextLine(r types.Repo) string {
	lang := r.Language
	if lang == "" {
		lang = "Unknown"
	}

	return fmt.Sprintf("%s: %s (Language: %s)", r.FullName, r.Description, lang)
}

// BuildPrompt renders the search request for query over records
func BuildPrompt(query string, records []types.Repo) (string, error) {
	entries := make([]repoContext, len(records))
	for i, r := range records {
		entries[i] = repoContext{ID: r.ID, Txt: contextLine(r)}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode repository context: %w", err)
	}

	return fmt.Sprintf(`You are an intelligent search engine for GitHub repositories.

User Query: %q

Here is the list of repositories the user has starred:
%s

Analyze the user query and the repository list.
Return a JSON object containing an array of 'ids' for the repositories that best match the user's intent.
Rank them by relevance.

Response format:
{ "ids": ["123", "456"] }`, query, data), nil
}

// Search never fails: any error degrades to an empty Outcome with StatusUnavailable
func (s *Searcher) Search(ctx context.Context, query string, records []types.Repo) Outcome {
	query = strings.TrimSpace(query)
	if query == "" || len(records) == 0 {
		return Outcome{IDs: []string{}, Status: StatusSkipped}
	}

	logger := logging.WithFields(map[string]interface{}{
		"query":   query,
		"records": len(records),
	})

	prompt, err := BuildPrompt(query, records)
	if err != nil {
		logger.Warn("Search prompt could not be built", "error", err)
		return Outcome{IDs: []string{}, Status: StatusUnavailable}
	}

	resp, err := s.provider.Complete(ctx, llm.Request{Prompt: prompt, JSON: true})
	if err != nil {
		logger.Warn("Search request failed", "error", err)
		return Outcome{IDs: []string{}, Status: StatusUnavailable}
	}

	var payload idsPayload
	if err := llm.DecodeJSON(resp.Text, &payload); err != nil || payload.IDs == nil {
		logger.Warn("Search response could not be parsed", "error", err)
		return Outcome{IDs: []string{}, Status: StatusUnavailable}
	}

	ids := coerceIDs(*payload.IDs)
	if len(ids) == 0 {
		logger.Info("Search matched nothing")
		return Outcome{IDs: ids, Status: StatusEmptyMatch}
	}

	logger.Debug("Search ranked repositories", "matches", len(ids))

	return Outcome{IDs: ids, Status: StatusOK}
}

// coerceIDs accepts string and numeric ids and drops anything else
func coerceIDs(raw []json.RawMessage) []string {
	ids := make([]string, 0, len(raw))

	for _, r := range raw {
		if string(r) == "null" {
			continue
		}

		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if s != "" {
				ids = append(ids, s)
			}

			continue
		}

		var n json.Number
		if err := json.Unmarshal(r, &n); err == nil {
			ids = append(ids, n.String())
		}
	}

	return ids
}

// Resolve maps ids onto records in id order, dropping ids with no record.
// A repeated id resolves only the first time.
func Resolve(ids []string, records []types.Repo) []types.Repo {
	byID := make(map[string]types.Repo, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	out := make([]types.Repo, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
			delete(byID, id)
		}
	}

	return out
}

// Fuzzy filters records locally by full name and description, best match first.
// A blank query returns records unchanged.
func Fuzzy(query string, records []types.Repo) []types.Repo {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}

	searchStrings := make([]string, len(records))
	for i, r := range records {
		searchStrings[i] = r.FullName + " " + r.Description
	}

	matches := fuzzy.Find(query, searchStrings)

	out := make([]types.Repo, 0, len(matches))
	for _, match := range matches {
		out = append(out, records[match.Index])
	}

	return out
}
