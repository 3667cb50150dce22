package testutil

import (
	"context"
	"sync"

	"github.com/kyleking/gh-star-scout/internal/llm"
)

// MockProvider implements llm.Provider for testing with call recording
type MockProvider struct {
	mu sync.Mutex

	name      string
	available bool
	respond   func(req llm.Request) (llm.Response, error)
	requests  []llm.Request
}

// MockOption is a functional option for configuring MockProvider
type MockOption func(*MockProvider)

// WithText makes every completion return text
func WithText(text string) MockOption {
	return func(m *MockProvider) {
		m.respond = func(llm.Request) (llm.Response, error) {
			return llm.Response{Text: text, Model: "mock"}, nil
		}
	}
}

// WithResponse makes every completion return resp
func WithResponse(resp llm.Response) MockOption {
	return func(m *MockProvider) {
		m.respond = func(llm.Request) (llm.Response, error) {
			return resp, nil
		}
	}
}

// WithError makes every completion fail with err
func WithError(err error) MockOption {
	return func(m *MockProvider) {
		m.respond = func(llm.Request) (llm.Response, error) {
			return llm.Response{}, err
		}
	}
}

// WithResponder installs a custom completion function
func WithResponder(fn func(req llm.Request) (llm.Response, error)) MockOption {
	return func(m *MockProvider) {
		m.respond = fn
	}
}

// Unavailable marks the provider as lacking credentials
func Unavailable() MockOption {
	return func(m *MockProvider) {
		m.available = false
	}
}

// NewMockProvider creates an available mock provider that returns an empty response by default
func NewMockProvider(opts ...MockOption) *MockProvider {
	mock := &MockProvider{
		name:      "mock",
		available: true,
		respond: func(llm.Request) (llm.Response, error) {
			return llm.Response{Model: "mock"}, nil
		},
	}

	for _, opt := range opts {
		opt(mock)
	}

	return mock
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Available() bool {
	return m.available
}

// Complete records req and delegates to the configured responder
func (m *MockProvider) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	respond := m.respond
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return llm.Response{}, err
	}

	return respond(req)
}

// CallCount returns the number of completions requested
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.requests)
}

// Requests returns a copy of every request received, in order
func (m *MockProvider) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]llm.Request, len(m.requests))
	copy(out, m.requests)

	return out
}

// LastRequest returns the most recent request, or the zero Request
func (m *MockProvider) LastRequest() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.requests) == 0 {
		return llm.Request{}
	}

	return m.requests[len(m.requests)-1]
}
