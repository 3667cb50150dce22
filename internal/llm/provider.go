package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/types"
)

// Provider constants for the supported completion backends
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	// ErrGroundingUnsupported is returned by providers that cannot search the web
	ErrGroundingUnsupported = stderrors.New("provider does not support web search grounding")
	// ErrNotConfigured is returned when a provider has no credentials
	ErrNotConfigured = stderrors.New("provider not configured")
)

// Provider is a single completion backend
type Provider interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, req Request) (Response, error)
}

// Request describes one completion
type Request struct {
	System string
	Prompt string
	// WebSearch asks the provider to ground its answer in live search results
	WebSearch bool
	// JSON asks for a bare JSON object in the response text
	JSON      bool
	MaxTokens int
}

// Response is the text of a completion plus any citations the provider returned
type Response struct {
	Text    string
	Sources []types.Source
	Model   string
}

// StripCodeFences removes markdown code fences that some models wrap around JSON
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}

		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}

		s = strings.TrimSpace(s)
	}

	return s
}

// DecodeJSON strips code fences from text and unmarshals it into v
func DecodeJSON(text string, v interface{}) error {
	cleaned := StripCodeFences(text)
	if cleaned == "" {
		return errors.New(errors.ErrTypeParse, "empty response payload")
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return errors.Wrap(err, errors.ErrTypeParse, "failed to decode response payload")
	}

	return nil
}
