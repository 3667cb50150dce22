package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kyleking/gh-star-scout/internal/github"
	"github.com/kyleking/gh-star-scout/internal/llm"
	"github.com/kyleking/gh-star-scout/internal/ui"
)

// mockStar is the wire shape the fake GitHub server returns
type mockStar struct {
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
}

func newMockStar(id int64, fullName string, stars int, language, description string) mockStar {
	s := mockStar{
		ID:              id,
		FullName:        fullName,
		HTMLURL:         "https://github.com/" + fullName,
		StargazersCount: stars,
	}

	if language != "" {
		s.Language = &language
	}

	if description != "" {
		s.Description = &description
	}

	login, _, _ := strings.Cut(fullName, "/")
	s.Owner.Login = login
	s.Owner.AvatarURL = "https://github.com/" + login + ".png"

	return s
}

// generatedStars returns n stars with ids 1..n; stars grow with the id
func generatedStars(n int) []mockStar {
	stars := make([]mockStar, n)
	for i := range n {
		id := int64(i + 1)
		stars[i] = newMockStar(id, fmt.Sprintf("owner%d/repo%d", id, id), int(id)*10, "Go", "")
	}

	return stars
}

// mockGitHub serves /users/{user}/starred for one user in pages of github.PerPage
type mockGitHub struct {
	server   *httptest.Server
	requests atomic.Int32
}

func newMockGitHub(t *testing.T, user string, stars []mockStar) *mockGitHub {
	t.Helper()

	m := &mockGitHub{}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path != "/users/"+user+"/starred" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))

			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		start := min((page-1)*github.PerPage, len(stars))
		end := min(start+github.PerPage, len(stars))

		_ = json.NewEncoder(w).Encode(stars[start:end])
	}))
	t.Cleanup(m.server.Close)

	return m
}

func (m *mockGitHub) fetcher() *github.StarFetcher {
	return github.NewStarFetcher(github.NewAnonymousClient(m.server.URL, 5*time.Second))
}

// testServices wires the real components to the fake GitHub server and provider
func testServices(gh *mockGitHub, provider llm.Provider) ui.Services {
	return newServices(gh.fetcher(), provider)
}
