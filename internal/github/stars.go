package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"golang.org/x/time/rate"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/types"
)

const (
	// PerPage is the number of starred repositories requested per page
	PerPage = 100
	// MaxPages bounds a single fetch to PerPage*MaxPages repositories
	MaxPages = 20
)

// starredRepo is the wire shape of one entry in the starred listing
type starredRepo struct {
	ID              int64   `json:"id"`
	FullName        string  `json:"full_name"`
	Description     *string `json:"description"`
	HTMLURL         string  `json:"html_url"`
	Language        *string `json:"language"`
	StargazersCount int     `json:"stargazers_count"`
	Owner           struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	} `json:"owner"`
	Topics []string `json:"topics"`
}

func (s starredRepo) toRecord() types.Repo {
	r := types.Repo{
		ID:       strconv.FormatInt(s.ID, 10),
		FullName: s.FullName,
		URL:      s.HTMLURL,
		Stars:    max(s.StargazersCount, 0),
		Owner: types.Owner{
			Login:     s.Owner.Login,
			AvatarURL: s.Owner.AvatarURL,
		},
		Topics: s.Topics,
	}

	if s.Description != nil {
		r.Description = *s.Description
	}

	if s.Language != nil {
		r.Language = *s.Language
	}

	return r
}

// Page is one batch of starred repositories as it arrives
type Page struct {
	Number int
	Repos  []types.Repo
	// Total is the cumulative number of repositories fetched so far
	Total int
}

// StarFetcher pages through a user's starred repositories
type StarFetcher struct {
	apiClient RESTClientInterface
	limiter   *rate.Limiter
	trace     bool
}

// Option configures a StarFetcher
type Option func(*StarFetcher)

// WithPageInterval spaces successive page requests at least d apart
func WithPageInterval(d time.Duration) Option {
	return func(f *StarFetcher) {
		if d <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}

		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithTrace logs every request path at debug level
func WithTrace(enabled bool) Option {
	return func(f *StarFetcher) {
		f.trace = enabled
	}
}

// NewStarFetcher creates a fetcher on top of apiClient
func NewStarFetcher(apiClient RESTClientInterface, opts ...Option) *StarFetcher {
	f := &StarFetcher{
		apiClient: apiClient,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Pages yields the user's starred repositories one page at a time, newest
// star first. Iteration ends after an empty page, a short page, or page
// MaxPages, whichever comes first. An error is yielded at most once and ends
// the sequence.
func (f *StarFetcher) Pages(ctx context.Context, username string) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		username = strings.TrimSpace(username)
		if username == "" {
			yield(Page{}, errors.New(errors.ErrTypeValidation, "username is required"))
			return
		}

		total := 0

		for page := 1; page <= MaxPages; page++ {
			if err := f.limiter.Wait(ctx); err != nil {
				yield(Page{}, err)
				return
			}

			repos, err := f.fetchPage(ctx, username, page)
			if err != nil {
				yield(Page{}, err)
				return
			}

			if len(repos) == 0 {
				return
			}

			total += len(repos)

			if !yield(Page{Number: page, Repos: repos, Total: total}, nil) {
				return
			}

			if len(repos) < PerPage {
				return
			}
		}

		logging.Debug("Stopped at page cap", "user", username, "max_pages", MaxPages, "total", total)
	}
}

// FetchAllStars collects every page from Pages. onProgress, when non-nil,
// receives the cumulative count once per page. On error, repositories
// gathered so far are discarded.
func (f *StarFetcher) FetchAllStars(
	ctx context.Context,
	username string,
	onProgress func(total int),
) ([]types.Repo, error) {
	all := []types.Repo{}

	for page, err := range f.Pages(ctx, username) {
		if err != nil {
			return nil, err
		}

		all = append(all, page.Repos...)

		if onProgress != nil {
			onProgress(page.Total)
		}
	}

	return all, nil
}

func (f *StarFetcher) fetchPage(ctx context.Context, username string, page int) ([]types.Repo, error) {
	path := starredPath(username, page)
	if f.trace {
		logging.Debug("GitHub request", "path", path)
	}

	var raw []starredRepo
	if err := f.apiClient.DoWithContext(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, classifyError(username, page, err)
	}

	repos := make([]types.Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, r.toRecord())
	}

	return repos, nil
}

func starredPath(username string, page int) string {
	return fmt.Sprintf(
		"users/%s/starred?per_page=%d&page=%d&sort=created&direction=desc",
		url.PathEscape(username), PerPage, page,
	)
}

// classifyError maps transport failures onto the error taxonomy
func classifyError(username string, page int, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var httpErr *api.HTTPError
	if stderrors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusNotFound:
			return errors.NewNotFoundError(username, err)
		case http.StatusForbidden:
			return errors.NewRateLimitError(err)
		}
	}

	return errors.Wrapf(err, errors.ErrTypeNetwork, "failed to fetch starred repositories (page %d)", page)
}
