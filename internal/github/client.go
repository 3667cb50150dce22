package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/cli/go-gh/v2/pkg/auth"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/logging"
)

const acceptHeader = "application/vnd.github.v3+json"

// RESTClientInterface defines the subset of go-gh's REST client the fetcher needs.
// Failed responses must be reported as *api.HTTPError so status codes can be mapped.
type RESTClientInterface interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// NewRESTClient creates a REST client for the configured GitHub host.
// A token from configuration or the GitHub CLI login yields a go-gh client;
// without one, requests go out unauthenticated.
func NewRESTClient(cfg config.GitHubConfig) (RESTClientInterface, error) {
	token := cfg.Token
	if token == "" && cfg.UseGHAuth {
		token, _ = auth.TokenForHost(cfg.Host)
	}

	if token == "" {
		logging.Debug("Using unauthenticated GitHub client", "api_url", cfg.APIURL)
		return NewAnonymousClient(cfg.APIURL, cfg.TimeoutDuration()), nil
	}

	client, err := api.NewRESTClient(api.ClientOptions{
		Host:      cfg.Host,
		AuthToken: token,
		Timeout:   cfg.TimeoutDuration(),
		Headers:   map[string]string{"Accept": acceptHeader},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub API client: %w", err)
	}

	return client, nil
}

// anonymousClient implements RESTClientInterface over plain net/http
type anonymousClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAnonymousClient creates a client that sends no credentials to baseURL
func NewAnonymousClient(baseURL string, timeout time.Duration) RESTClientInterface {
	return &anonymousClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *anonymousClient) DoWithContext(
	ctx context.Context,
	method string,
	path string,
	body io.Reader,
	response interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimPrefix(path, "/"), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &api.HTTPError{
			StatusCode: resp.StatusCode,
			RequestURL: req.URL,
			Headers:    resp.Header,
		}

		var payload struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			httpErr.Message = payload.Message
		}

		return httpErr
	}

	if response == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(response)
}
