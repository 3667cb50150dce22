package github

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/gh-star-scout/internal/errors"
)

// mockRESTClient implements RESTClientInterface for testing
type mockRESTClient struct {
	mu        sync.Mutex
	responses map[string]interface{}
	errors    map[string]error
	callCount map[string]int
	calls     []string
}

func newMockRESTClient() *mockRESTClient {
	return &mockRESTClient{
		responses: make(map[string]interface{}),
		errors:    make(map[string]error),
		callCount: make(map[string]int),
	}
}

func (m *mockRESTClient) DoWithContext(
	_ context.Context,
	_ string,
	path string,
	_ io.Reader,
	response interface{},
) error {
	m.mu.Lock()
	m.callCount[path]++
	m.calls = append(m.calls, path)
	err, hasErr := m.errors[path]
	resp, hasResp := m.responses[path]
	m.mu.Unlock()

	if hasErr {
		return err
	}

	if hasResp {
		// Round-trip through JSON to populate the caller's wire struct
		jsonData, err := json.Marshal(resp)
		if err != nil {
			return err
		}

		return json.Unmarshal(jsonData, response)
	}

	return &api.HTTPError{StatusCode: http.StatusNotFound}
}

func (m *mockRESTClient) setResponse(path string, response interface{}) {
	m.mu.Lock()
	m.responses[path] = response
	m.mu.Unlock()
}

func (m *mockRESTClient) setError(path string, err error) {
	m.mu.Lock()
	m.errors[path] = err
	m.mu.Unlock()
}

func (m *mockRESTClient) getCallCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.callCount[path]
}

func (m *mockRESTClient) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

// makePage builds n wire entries with ids starting at firstID.
// Stars descend with id so ordering assertions have something to bite on.
func makePage(firstID, n int) []map[string]interface{} {
	page := make([]map[string]interface{}, n)
	for i := range n {
		id := firstID + i
		page[i] = map[string]interface{}{
			"id":               id,
			"full_name":        fmt.Sprintf("owner%d/repo%d", id, id),
			"description":      fmt.Sprintf("Repository number %d", id),
			"html_url":         fmt.Sprintf("https://github.com/owner%d/repo%d", id, id),
			"language":         "Go",
			"stargazers_count": 10000 - id,
			"owner": map[string]interface{}{
				"login":      fmt.Sprintf("owner%d", id),
				"avatar_url": fmt.Sprintf("https://avatars.example/%d", id),
			},
			"topics": []string{"cli"},
		}
	}

	return page
}

// setupPages registers the given page sizes for user, ids continuing across pages
func setupPages(m *mockRESTClient, user string, sizes ...int) {
	nextID := 1
	for i, n := range sizes {
		m.setResponse(starredPath(user, i+1), makePage(nextID, n))
		nextID += n
	}
}

func TestStarredPath(t *testing.T) {
	assert.Equal(t,
		"users/octocat/starred?per_page=100&page=3&sort=created&direction=desc",
		starredPath("octocat", 3))
}

func TestFetchAllStars_StopConditions(t *testing.T) {
	tests := []struct {
		name         string
		sizes        []int
		wantTotal    int
		wantRequests int
		wantProgress []int
	}{
		{
			name:         "full pages then empty page",
			sizes:        []int{100, 100, 0},
			wantTotal:    200,
			wantRequests: 3,
			wantProgress: []int{100, 200},
		},
		{
			name:         "short last page",
			sizes:        []int{100, 37},
			wantTotal:    137,
			wantRequests: 2,
			wantProgress: []int{100, 137},
		},
		{
			name:         "empty first page",
			sizes:        []int{0},
			wantTotal:    0,
			wantRequests: 1,
			wantProgress: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := newMockRESTClient()
			setupPages(mockClient, "octocat", tt.sizes...)
			fetcher := NewStarFetcher(mockClient)

			var progress []int
			repos, err := fetcher.FetchAllStars(context.Background(), "octocat", func(total int) {
				progress = append(progress, total)
			})

			require.NoError(t, err)
			assert.Len(t, repos, tt.wantTotal)
			assert.Equal(t, tt.wantRequests, mockClient.totalCalls())
			assert.Equal(t, tt.wantProgress, progress)
		})
	}
}

func TestFetchAllStars_PageCap(t *testing.T) {
	mockClient := newMockRESTClient()
	sizes := make([]int, MaxPages+1)
	for i := range sizes {
		sizes[i] = PerPage
	}
	setupPages(mockClient, "hoarder", sizes...)

	fetcher := NewStarFetcher(mockClient)

	calls := 0
	repos, err := fetcher.FetchAllStars(context.Background(), "hoarder", func(int) { calls++ })

	require.NoError(t, err)
	assert.Len(t, repos, MaxPages*PerPage)
	assert.Equal(t, MaxPages, mockClient.totalCalls())
	assert.Equal(t, MaxPages, calls)
	assert.Zero(t, mockClient.getCallCount(starredPath("hoarder", MaxPages+1)), "no 21st request")
}

func TestPages_ProgressStrictlyIncreasing(t *testing.T) {
	mockClient := newMockRESTClient()
	setupPages(mockClient, "octocat", 100, 100, 100, 5)

	fetcher := NewStarFetcher(mockClient)

	last := 0
	pages := 0
	for page, err := range fetcher.Pages(context.Background(), "octocat") {
		require.NoError(t, err)
		pages++
		assert.Equal(t, pages, page.Number)
		assert.Greater(t, page.Total, last)
		assert.Equal(t, last+len(page.Repos), page.Total)
		last = page.Total
	}

	assert.Equal(t, 4, pages)
	assert.Equal(t, 305, last)
}

func TestPages_EarlyBreakStopsRequests(t *testing.T) {
	mockClient := newMockRESTClient()
	setupPages(mockClient, "octocat", 100, 100, 100)

	fetcher := NewStarFetcher(mockClient)

	for range fetcher.Pages(context.Background(), "octocat") {
		break
	}

	assert.Equal(t, 1, mockClient.totalCalls())
}

func TestFetchAllStars_RecordMapping(t *testing.T) {
	mockClient := newMockRESTClient()
	mockClient.setResponse(starredPath("octocat", 1), []map[string]interface{}{
		{
			"id":               int64(1296269),
			"full_name":        "octocat/Hello-World",
			"description":      nil,
			"html_url":         "https://github.com/octocat/Hello-World",
			"language":         nil,
			"stargazers_count": 42,
			"owner":            map[string]interface{}{"login": "octocat", "avatar_url": "https://avatars.example/octocat"},
			"topics":           []string{"octocat", "api"},
		},
	})

	repos, err := NewStarFetcher(mockClient).FetchAllStars(context.Background(), "octocat", nil)
	require.NoError(t, err)
	require.Len(t, repos, 1)

	r := repos[0]
	assert.Equal(t, "1296269", r.ID)
	assert.Equal(t, "octocat/Hello-World", r.FullName)
	assert.Empty(t, r.Description)
	assert.Empty(t, r.Language)
	assert.Equal(t, 42, r.Stars)
	assert.Equal(t, "octocat", r.Owner.Login)
	assert.Equal(t, []string{"octocat", "api"}, r.Topics)
	assert.Empty(t, r.AIInsight)
}

func TestFetchAllStars_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType errors.ErrorType
	}{
		{name: "404 is not found", err: &api.HTTPError{StatusCode: http.StatusNotFound}, wantType: errors.ErrTypeNotFound},
		{name: "403 is rate limited", err: &api.HTTPError{StatusCode: http.StatusForbidden}, wantType: errors.ErrTypeRateLimit},
		{name: "500 is network", err: &api.HTTPError{StatusCode: http.StatusInternalServerError}, wantType: errors.ErrTypeNetwork},
		{name: "transport failure is network", err: stderrors.New("connection reset"), wantType: errors.ErrTypeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := newMockRESTClient()
			mockClient.setError(starredPath("octocat", 1), tt.err)

			repos, err := NewStarFetcher(mockClient).FetchAllStars(context.Background(), "octocat", nil)

			require.Error(t, err)
			assert.Nil(t, repos)
			assert.Equal(t, tt.wantType, errors.GetType(err))
		})
	}
}

func TestFetchAllStars_FailFastDiscardsPartial(t *testing.T) {
	mockClient := newMockRESTClient()
	setupPages(mockClient, "octocat", 100)
	mockClient.setError(starredPath("octocat", 2), &api.HTTPError{StatusCode: http.StatusForbidden})

	var progress []int
	repos, err := NewStarFetcher(mockClient).FetchAllStars(context.Background(), "octocat", func(total int) {
		progress = append(progress, total)
	})

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeRateLimit))
	assert.Nil(t, repos)
	assert.Equal(t, []int{100}, progress)
	assert.Zero(t, mockClient.getCallCount(starredPath("octocat", 3)))
}

func TestFetchAllStars_BlankUsername(t *testing.T) {
	mockClient := newMockRESTClient()

	_, err := NewStarFetcher(mockClient).FetchAllStars(context.Background(), "   ", nil)

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.Zero(t, mockClient.totalCalls())
}

func TestFetchAllStars_CanceledContext(t *testing.T) {
	mockClient := newMockRESTClient()
	setupPages(mockClient, "octocat", 100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStarFetcher(mockClient, WithPageInterval(0)).FetchAllStars(ctx, "octocat", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mockClient.totalCalls())
}

func TestFetchAllStars_EndToEndOctocat(t *testing.T) {
	mockClient := newMockRESTClient()
	setupPages(mockClient, "octocat", 100, 50)

	var progress []int
	repos, err := NewStarFetcher(mockClient).FetchAllStars(context.Background(), "octocat", func(total int) {
		progress = append(progress, total)
	})

	require.NoError(t, err)
	assert.Len(t, repos, 150)
	assert.Equal(t, []int{100, 150}, progress)
	assert.Equal(t, "1", repos[0].ID, "newest star first, as returned")
	assert.Equal(t, "150", repos[149].ID)
}

func TestClassifyErrorPassesCancellation(t *testing.T) {
	err := classifyError("octocat", 1, fmt.Errorf("wrapped: %w", context.DeadlineExceeded))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, errors.ErrTypeInternal, errors.GetType(err))
}
