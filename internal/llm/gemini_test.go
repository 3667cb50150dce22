package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyleking/gh-star-scout/internal/errors"
	"github.com/kyleking/gh-star-scout/internal/types"
)

const groundedResponse = `{
  "candidates": [{
    "content": {"parts": [{"text": "{\"repos\":"}, {"text": "[]}"}]},
    "finishReason": "STOP",
    "groundingMetadata": {
      "groundingChunks": [
        {"web": {"uri": "https://github.com/trending", "title": "Trending"}},
        {"web": {"title": "no uri"}},
        {},
        {"web": {"uri": "https://example.com/post", "title": ""}}
      ]
    }
  }],
  "modelVersion": "gemini-3-flash-preview-001"
}`

func TestGeminiProvider_Complete(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotBody map[string]interface{}
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = w.Write([]byte(groundedResponse))
	}))
	defer server.Close()

	provider := NewGeminiProvider("test-key", "gemini-3-flash-preview", server.URL+"/", time.Second)

	resp, err := provider.Complete(context.Background(), Request{
		System:    "be brief",
		Prompt:    "find trending repos",
		WebSearch: true,
		JSON:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-3-flash-preview:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	contents, ok := gotBody["contents"].([]interface{})
	require.True(t, ok)
	require.Len(t, contents, 1)
	assert.Contains(t, fmt.Sprint(contents[0]), "find trending repos")

	require.Contains(t, gotBody, "systemInstruction")
	assert.Contains(t, fmt.Sprint(gotBody["systemInstruction"]), "be brief")

	tools, ok := gotBody["tools"].([]interface{})
	require.True(t, ok)
	require.Len(t, tools, 1)
	assert.Contains(t, tools[0], "googleSearch")

	generation, ok := gotBody["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "application/json", generation["responseMimeType"])

	assert.Equal(t, `{"repos":[]}`, resp.Text)
	assert.Equal(t, "gemini-3-flash-preview-001", resp.Model)
	assert.Equal(t, []types.Source{
		{Title: "Trending", URI: "https://github.com/trending"},
		{Title: "", URI: "https://example.com/post"},
	}, resp.Sources)
}

func TestGeminiProvider_PlainRequestOmitsOptionalBlocks(t *testing.T) {
	var raw map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A fast tool."}]}}]}`))
	}))
	defer server.Close()

	resp, err := NewGeminiProvider("k", "", server.URL, time.Second).
		Complete(context.Background(), Request{Prompt: "explain"})
	require.NoError(t, err)

	assert.Equal(t, "A fast tool.", resp.Text)
	assert.Equal(t, defaultGeminiModel, resp.Model)
	assert.NotContains(t, raw, "tools")
	assert.NotContains(t, raw, "systemInstruction")
	assert.NotContains(t, raw, "generationConfig")
}

func TestGeminiProvider_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType errors.ErrorType
	}{
		{name: "http error", status: http.StatusTooManyRequests, body: `{"error":{"message":"quota"}}`, wantType: errors.ErrTypeLLM},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantType: errors.ErrTypeParse},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, wantType: errors.ErrTypeLLM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewGeminiProvider("k", "", server.URL, time.Second).
				Complete(context.Background(), Request{Prompt: "x"})

			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.GetType(err))
		})
	}
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	resp, err := NewGeminiProvider("k", "", server.URL, time.Second).
		Complete(context.Background(), Request{Prompt: "x"})

	require.NoError(t, err)
	assert.Empty(t, resp.Text)
	assert.Empty(t, resp.Sources)
}

func TestGeminiProvider_NotConfigured(t *testing.T) {
	provider := NewGeminiProvider("", "", "", time.Second)

	assert.False(t, provider.Available())

	_, err := provider.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
