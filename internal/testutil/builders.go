package testutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kyleking/gh-star-scout/internal/types"
)

// RepoOption is a functional option for configuring test repositories
type RepoOption func(*types.Repo)

// WithID sets the repository id
func WithID(id string) RepoOption {
	return func(r *types.Repo) {
		r.ID = id
	}
}

// WithFullName sets the repository full name and derives owner and URL from it
func WithFullName(name string) RepoOption {
	return func(r *types.Repo) {
		r.FullName = name
		r.URL = "https://github.com/" + name

		login, _, _ := strings.Cut(name, "/")
		r.Owner = types.Owner{
			Login:     login,
			AvatarURL: fmt.Sprintf("https://github.com/%s.png", login),
		}
	}
}

// WithStars sets the stargazers count
func WithStars(count int) RepoOption {
	return func(r *types.Repo) {
		r.Stars = count
	}
}

// WithLanguage sets the primary language
func WithLanguage(lang string) RepoOption {
	return func(r *types.Repo) {
		r.Language = lang
	}
}

// WithDescription sets the repository description
func WithDescription(desc string) RepoOption {
	return func(r *types.Repo) {
		r.Description = desc
	}
}

// WithTopics sets the repository topics
func WithTopics(topics ...string) RepoOption {
	return func(r *types.Repo) {
		r.Topics = topics
	}
}

// WithInsight sets the AI insight
func WithInsight(text string) RepoOption {
	return func(r *types.Repo) {
		r.AIInsight = text
	}
}

// NewRepo creates a test repository with sensible defaults
func NewRepo(opts ...RepoOption) types.Repo {
	repo := types.Repo{
		ID:          "1",
		FullName:    DefaultRepoFullName,
		Description: "A test repository",
		URL:         "https://github.com/" + DefaultRepoFullName,
		Language:    "Go",
		Stars:       TestStarCount,
		Owner: types.Owner{
			Login:     "test",
			AvatarURL: "https://github.com/test.png",
		},
	}

	for _, opt := range opts {
		opt(&repo)
	}

	return repo
}

// NewRepos creates count repositories with ids "1".."count". Stars follow
// starsFor(i) for the zero-based index i.
func NewRepos(count int, starsFor func(i int) int) []types.Repo {
	repos := make([]types.Repo, count)
	for i := range count {
		id := strconv.Itoa(i + 1)
		repos[i] = NewRepo(
			WithID(id),
			WithFullName(fmt.Sprintf("owner%s/repo%s", id, id)),
			WithStars(starsFor(i)),
		)
	}

	return repos
}

// IDs returns the ids of repos in order
func IDs(repos []types.Repo) []string {
	ids := make([]string, len(repos))
	for i, r := range repos {
		ids[i] = r.ID
	}

	return ids
}
