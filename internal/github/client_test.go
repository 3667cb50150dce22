package github

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/errors"
)

func TestNewRESTClient_AnonymousWithoutToken(t *testing.T) {
	cfg := config.Default().GitHub
	cfg.Token = ""
	cfg.UseGHAuth = false

	client, err := NewRESTClient(cfg)
	require.NoError(t, err)

	_, ok := client.(*anonymousClient)
	assert.True(t, ok, "expected unauthenticated client when no token is available")
}

func TestNewRESTClient_TokenUsesGoGH(t *testing.T) {
	cfg := config.Default().GitHub
	cfg.Token = "ghp_test"

	client, err := NewRESTClient(cfg)
	require.NoError(t, err)

	_, ok := client.(*api.RESTClient)
	assert.True(t, ok, "expected go-gh REST client when a token is configured")
}

func TestAnonymousClient_DecodesResponse(t *testing.T) {
	var gotPath, gotQuery, gotAccept string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"full_name":"octocat/linguist","stargazers_count":12,"owner":{"login":"octocat"}}]`))
	}))
	defer server.Close()

	client := NewAnonymousClient(server.URL+"/", time.Second)

	var raw []starredRepo
	err := client.DoWithContext(context.Background(), http.MethodGet, starredPath("octocat", 1), nil, &raw)
	require.NoError(t, err)

	assert.Equal(t, "/users/octocat/starred", gotPath)
	assert.Equal(t, "per_page=100&page=1&sort=created&direction=desc", gotQuery)
	assert.Equal(t, acceptHeader, gotAccept)
	require.Len(t, raw, 1)
	assert.Equal(t, "7", raw[0].toRecord().ID)
}

func TestAnonymousClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewAnonymousClient(server.URL, time.Second)

	var raw []starredRepo
	err := client.DoWithContext(context.Background(), http.MethodGet, "users/octocat/starred", nil, &raw)
	require.Error(t, err)

	var httpErr *api.HTTPError
	require.True(t, stderrors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
	assert.Equal(t, "API rate limit exceeded", httpErr.Message)
}

func TestStarFetcherOverHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/ghost/starred":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	fetcher := NewStarFetcher(NewAnonymousClient(server.URL, time.Second))

	_, err := fetcher.FetchAllStars(context.Background(), "ghost", nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	assert.Equal(t, `user "ghost" does not exist`, errors.UserMessage(err))

	repos, err := fetcher.FetchAllStars(context.Background(), "octocat", nil)
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)
}
