package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campusbot/app/config"
	"campusbot/app/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	return newTestClientWithConfig(t, handler, func(*config.OpenAI) {})
}

func newTestClientWithConfig(t *testing.T, handler http.HandlerFunc, modify func(cfg *config.OpenAI)) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.OpenAI{
		BaseURL:          server.URL + "/v1",
		Token:            "sk-test",
		Model:            "test-model",
		Temperature:      0.7,
		MaxTokens:        100,
		FrequencyPenalty: 0.5,
		PresencePenalty:  0.5,
		Timeout:          5 * time.Second,
	}
	modify(&cfg)

	return NewFromConfig(cfg)
}

func completionBody(content string) string {
	return fmt.Sprintf(`{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"test-model",
"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, content)
}

func TestClient_Complete(t *testing.T) {
	var received openai.ChatCompletionRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("  The answer.  "))
	})

	text, err := client.Complete(context.Background(), CompletionRequest{
		System: "You are helpful",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "hello"},
			{Role: domain.RoleUser, Content: "question"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "The answer.", text)

	assert.Equal(t, "test-model", received.Model)
	assert.Equal(t, 100, received.MaxCompletionTokens)
	assert.Zero(t, received.MaxTokens)
	assert.InDelta(t, 0.7, received.Temperature, 1e-6)
	require.Len(t, received.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, received.Messages[0].Role)
	assert.Equal(t, "question", received.Messages[3].Content)
}

func TestClient_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any

	client := newTestClientWithConfig(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &raw)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("ok"))
	}, func(cfg *config.OpenAI) {
		cfg.Temperature = 0
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	require.Contains(t, raw, "temperature")
	assert.InDelta(t, 0, raw["temperature"], 1e-6)
}

func TestClient_EmptyCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("   "))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_QuotaError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.False(t, IsQuotaError(err))
}

func TestClient_Enabled(t *testing.T) {
	assert.False(t, NewFromConfig(config.OpenAI{BaseURL: "http://localhost"}).Enabled())
	assert.True(t, NewFromConfig(config.OpenAI{BaseURL: "http://localhost", Token: "x"}).Enabled())
}

func TestIsQuotaError(t *testing.T) {
	assert.False(t, IsQuotaError(nil))
	assert.False(t, IsQuotaError(errors.New("connection refused")))
	assert.True(t, IsQuotaError(ErrRateLimited))
	assert.True(t, IsQuotaError(fmt.Errorf("call: %w", ErrRateLimited)))
	assert.True(t, IsQuotaError(errors.New("Rate limit reached for requests")))
	assert.True(t, IsQuotaError(errors.New("status 429")))
	assert.True(t, IsQuotaError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"}))
}
