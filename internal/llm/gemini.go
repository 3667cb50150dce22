package llm

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
	"github.com/kyleking/gh-star-scout/internal/types"
)

const (
	defaultGeminiModel      = "gemini-3-flash-preview"
	defaultGeminiAPIVersion = "v1beta"
)

// GeminiProvider implements Provider on the Gemini API through the genai SDK.
// The SDK client is created on first use so an unconfigured provider costs nothing.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiProvider creates a new Gemini provider. An empty baseURL targets
// the public Gemini API.
func NewGeminiProvider(apiKey, model, baseURL string, timeout time.Duration) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		timeout: timeout,
	}
}

func (g *GeminiProvider) Name() string {
	return ProviderGemini
}

func (g *GeminiProvider) Available() bool {
	return g.apiKey != ""
}

func (g *GeminiProvider) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		opts := genai.HTTPOptions{
			BaseURL:    g.baseURL,
			APIVersion: defaultGeminiAPIVersion,
		}
		if g.timeout > 0 {
			opts.Timeout = &g.timeout
		}

		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      g.apiKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  &http.Client{Timeout: g.timeout},
			HTTPOptions: opts,
		})
	})

	return g.client, g.initErr
}

// generateConfig maps req onto the SDK's request options; nil when req sets none
func generateConfig(req Request) *genai.GenerateContentConfig {
	if req.System == "" && !req.WebSearch && !req.JSON && req.MaxTokens <= 0 {
		return nil
	}

	cfg := &genai.GenerateContentConfig{}

	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	if req.WebSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	return cfg
}

func (g *GeminiProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if !g.Available() {
		return Response{}, ErrNotConfigured
	}

	client, err := g.genaiClient(ctx)
	if err != nil {
		return Response{}, errors.Wrap(err, errors.ErrTypeConfig, "failed to create gemini client")
	}

	logging.Debug("Gemini API request starting", "model", g.model, "web_search", req.WebSearch, "json", req.JSON)

	result, err := client.Models.GenerateContent(ctx, g.model,
		genai.Text(req.Prompt),
		generateConfig(req),
	)
	if err != nil {
		return Response{}, classifyGeminiError(ctx, err)
	}

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return Response{}, errors.Newf(errors.ErrTypeLLM, "gemini blocked the prompt: %s", result.PromptFeedback.BlockReason)
	}

	out := Response{Model: g.model}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}

	if len(result.Candidates) == 0 || result.Candidates[0] == nil {
		return out, nil
	}

	candidate := result.Candidates[0]
	out.Text = candidateText(candidate)
	out.Sources = groundingSources(candidate.GroundingMetadata)

	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		logging.Warn("Gemini response truncated due to max tokens",
			"model", out.Model,
			"max_tokens", req.MaxTokens,
			"content_length", len(out.Text))
	}

	logging.Debug("Gemini API response",
		"model", out.Model,
		"content_length", len(out.Text),
		"sources", len(out.Sources),
		"finish_reason", candidate.FinishReason)

	return out, nil
}

// candidateText joins the text parts of a candidate, skipping model thoughts
func candidateText(candidate *genai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}

	var text strings.Builder

	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}

		text.WriteString(part.Text)
	}

	return text.String()
}

// groundingSources returns web citations in order, skipping entries without a URI
func groundingSources(meta *genai.GroundingMetadata) []types.Source {
	if meta == nil {
		return nil
	}

	var sources []types.Source

	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}

		sources = append(sources, types.Source{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}

	return sources
}

func classifyGeminiError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		return errors.Wrap(err, errors.ErrTypeLLM, fmt.Sprintf("gemini API error (status %d)", apiErr.Code))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) {
		return errors.Wrap(err, errors.ErrTypeParse, "failed to parse gemini response")
	}

	return errors.Wrap(err, errors.ErrTypeNetwork, "gemini request failed")
}
