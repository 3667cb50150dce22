package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/logging"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider implements Provider for any OpenAI-compatible chat completions API
type OpenAIProvider struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIProvider creates a provider for baseURL; an empty baseURL targets api.openai.com
func NewOpenAIProvider(apiKey, model, baseURL string, timeout time.Duration) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}

	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

func (o *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Available() bool {
	return o.apiKey != ""
}

func (o *OpenAIProvider) Complete(ctx context.Context, req Request) (Response, error) {
	if !o.Available() {
		return Response{}, ErrNotConfigured
	}

	if req.WebSearch {
		return Response{}, ErrGroundingUnsupported
	}

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}

	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: 0.3,
	}

	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	logging.Debug("OpenAI API request starting", "model", o.model, "json", req.JSON)

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Response{}, errors.New(errors.ErrTypeLLM, "no choices returned")
	}

	model := o.model
	if resp.Model != "" {
		model = resp.Model
	}

	logging.Debug("OpenAI API response",
		"model", model,
		"content_length", len(resp.Choices[0].Message.Content),
		"finish_reason", resp.Choices[0].FinishReason)

	return Response{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
	}, nil
}
