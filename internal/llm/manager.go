package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kyleking/gh-star-scout/internal/config"
	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
)

// Manager routes completions to a preferred provider and falls through to others
type Manager struct {
	providers map[string]Provider
	config    ManagerConfig
}

// ManagerConfig configures the LLM manager behavior
type ManagerConfig struct {
	DefaultProvider   string
	FallbackProviders []string
	Timeout           time.Duration
}

// NewManager creates a new LLM manager with the given configuration
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		providers: make(map[string]Provider),
		config:    cfg,
	}
}

// NewManagerFromConfig builds a manager with the Gemini and OpenAI providers registered
func NewManagerFromConfig(cfg config.LLMConfig) *Manager {
	timeout := cfg.TimeoutDuration()

	fallback := make([]string, 0, len(cfg.Fallback))
	for _, name := range cfg.Fallback {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			fallback = append(fallback, name)
		}
	}

	m := NewManager(ManagerConfig{
		DefaultProvider:   strings.ToLower(cfg.Provider),
		FallbackProviders: fallback,
		Timeout:           timeout,
	})

	_ = m.RegisterProvider(NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, timeout))
	_ = m.RegisterProvider(NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, timeout))

	return m
}

// RegisterProvider registers a provider under its own name
func (m *Manager) RegisterProvider(provider Provider) error {
	if provider == nil {
		return stderrors.New("provider cannot be nil")
	}

	if provider.Name() == "" {
		return stderrors.New("provider name cannot be empty")
	}

	m.providers[provider.Name()] = provider

	return nil
}

func (m *Manager) Name() string {
	return "manager"
}

// Available reports whether any provider in the routing order has credentials
func (m *Manager) Available() bool {
	for _, name := range m.order() {
		if p, ok := m.providers[name]; ok && p.Available() {
			return true
		}
	}

	return false
}

// order is the default provider followed by fallbacks, without duplicates
func (m *Manager) order() []string {
	seen := make(map[string]bool)

	var names []string

	for _, name := range append([]string{m.config.DefaultProvider}, m.config.FallbackProviders...) {
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true
		names = append(names, name)
	}

	return names
}

// Complete tries each provider in order, skipping ones without credentials and
// ones that cannot serve a grounded request. There are no retries.
func (m *Manager) Complete(ctx context.Context, req Request) (Response, error) {
	if m.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.Timeout)
		defer cancel()
	}

	logger := logging.WithField("request_id", uuid.NewString())

	var lastErr error

	for _, name := range m.order() {
		provider, exists := m.providers[name]
		if !exists || !provider.Available() {
			continue
		}

		start := time.Now()
		resp, err := provider.Complete(ctx, req)

		if err == nil {
			logger.Debug("LLM completion succeeded",
				"provider", name,
				"model", resp.Model,
				"duration", time.Since(start))

			return resp, nil
		}

		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}

		if stderrors.Is(err, ErrGroundingUnsupported) {
			logger.Debug("Provider cannot ground request, trying next", "provider", name)
		} else {
			logger.Warn("LLM provider failed", "provider", name, "error", err)
		}

		lastErr = err
	}

	if lastErr == nil {
		return Response{}, errors.New(errors.ErrTypeLLM, "no LLM provider configured").
			WithSuggestion("Set GEMINI_API_KEY or OPENAI_API_KEY")
	}

	return Response{}, errors.Wrap(lastErr, errors.ErrTypeLLM, "all LLM providers failed")
}

// GetAvailableProviders returns the sorted names of registered providers with credentials
func (m *Manager) GetAvailableProviders() []string {
	var providers []string

	for name, p := range m.providers {
		if p.Available() {
			providers = append(providers, name)
		}
	}

	sort.Strings(providers)

	return providers
}

// IsProviderRegistered checks if a provider is registered
func (m *Manager) IsProviderRegistered(name string) bool {
	_, exists := m.providers[name]
	return exists
}

func (m *Manager) String() string {
	return fmt.Sprintf("llm.Manager(order=%v)", m.order())
}
