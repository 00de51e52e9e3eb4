package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-sitegen-ai-api/internal/config"
)

func testClient(t *testing.T, model string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient("openai", &config.ProviderConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       model,
		MaxTokens:   512,
		Temperature: 0.6,
		Timeout:     5 * time.Second,
	})
}

func chatOK(content string) string {
	return `{"choices":[{"message":{"content":` + mustJSON(content) + `}}],"usage":{"prompt_tokens":10,"completion_tokens":20}}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteSuccess(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	client := testClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatOK(`{"headline":"ok"}`))
	})

	out, err := client.Complete(context.Background(), CompletionRequest{
		System:     "system prompt",
		User:       "user prompt",
		JSONOutput: true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"headline":"ok"}`, out.Text)
	assert.Equal(t, 10, out.PromptTokens)
	assert.Equal(t, 20, out.CompletionTokens)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotBody["model"])
	assert.Equal(t, float64(512), gotBody["max_tokens"])
	assert.Equal(t, 0.6, gotBody["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, gotBody["response_format"])

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestCompleteReasoningModelBody(t *testing.T) {
	var gotBody map[string]any

	client := testClient(t, "gpt-5-mini", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		io.WriteString(w, chatOK("hi"))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{User: "u"})
	require.NoError(t, err)

	// 推理系模型用 max_completion_tokens 且不发温度
	assert.Equal(t, float64(512), gotBody["max_completion_tokens"])
	assert.NotContains(t, gotBody, "max_tokens")
	assert.NotContains(t, gotBody, "temperature")
	assert.NotContains(t, gotBody, "response_format")
}

func TestCompletePerRequestModelOverride(t *testing.T) {
	var gotBody map[string]any

	client := testClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		io.WriteString(w, chatOK("hi"))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{User: "u", Model: "o3-mini"})
	require.NoError(t, err)

	assert.Equal(t, "o3-mini", gotBody["model"])
	assert.Equal(t, float64(512), gotBody["max_completion_tokens"])
	assert.NotContains(t, gotBody, "temperature")
}

func TestCompleteRateLimited(t *testing.T) {
	client := testClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"rate limit reached"}}`)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{User: "u"})
	require.Error(t, err)

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, http.StatusTooManyRequests, callErr.StatusCode)
	assert.True(t, callErr.IsRetryable())
	assert.Equal(t, "rate limit reached", callErr.Message)
}

func TestCompleteServerError(t *testing.T) {
	client := testClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{User: "u"})

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.True(t, callErr.IsRetryable())
	// 无 error.message 时退回标准状态文案
	assert.Equal(t, http.StatusText(http.StatusBadGateway), callErr.Message)
}

func TestCompleteClientErrorFatal(t *testing.T) {
	client := testClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"invalid request"}}`)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{User: "u"})

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.False(t, callErr.IsRetryable())
	assert.Equal(t, "invalid request", callErr.Message)
}

func TestCompleteNetworkErrorRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient("openai", &config.ProviderConfig{
		APIKey:  "k",
		BaseURL: url,
		Model:   "gpt-4o-mini",
	})

	_, err := client.Complete(context.Background(), CompletionRequest{User: "u"})

	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.True(t, callErr.IsRetryable())
	assert.Zero(t, callErr.StatusCode)
}

func TestCompleteEmptyChoices(t *testing.T) {
	client := testClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[],"usage":{"prompt_tokens":3,"completion_tokens":0}}`)
	})

	out, err := client.Complete(context.Background(), CompletionRequest{User: "u"})
	require.NoError(t, err)

	// 空 choices 不是错误，交给上层按空输出处理
	assert.Equal(t, "", out.Text)
	assert.Equal(t, 3, out.PromptTokens)
}

func TestHasCredential(t *testing.T) {
	withKey := NewClient("openai", &config.ProviderConfig{APIKey: "k"})
	assert.True(t, withKey.HasCredential())

	noKey := NewClient("openai", &config.ProviderConfig{APIKey: "   "})
	assert.False(t, noKey.HasCredential())

	var nilClient *Client
	assert.False(t, nilClient.HasCredential())
}

func TestFamilyFor(t *testing.T) {
	tests := []struct {
		model      string
		tokenField string
		sendTemp   bool
	}{
		{"gpt-4o-mini", "max_tokens", true},
		{"gpt-4.1", "max_tokens", true},
		{"gpt-5-mini", "max_completion_tokens", false},
		{"o1-preview", "max_completion_tokens", false},
		{"o3", "max_completion_tokens", false},
		{"o4-mini", "max_completion_tokens", false},
		{"", "max_tokens", true},
	}

	for _, tt := range tests {
		f := familyFor(tt.model)
		assert.Equal(t, tt.tokenField, f.tokenLimitField, tt.model)
		assert.Equal(t, tt.sendTemp, f.sendTemperature, tt.model)
	}
}
