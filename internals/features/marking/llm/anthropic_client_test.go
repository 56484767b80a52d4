// file: internals/features/marking/llm/anthropic_client_test.go
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewAnthropicClient("test-key", "claude-sonnet-4-20250514", 0.3, 4000, 5*time.Second)
	c.endpoint = srv.URL
	return c
}

func TestAnthropicClient_Complete(t *testing.T) {
	var gotReq map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-sonnet-4-20250514",
			"content": []map[string]any{
				{"type": "text", "text": `{"awarded_marks": 7}`},
			},
		})
	})

	got, err := client.Complete(context.Background(), "nilai jawaban ini", "")
	require.NoError(t, err)

	assert.Equal(t, `{"awarded_marks": 7}`, got.Text)
	assert.Equal(t, "claude-sonnet-4-20250514", got.Model)
	assert.NotEmpty(t, got.RawResponse)
	assert.GreaterOrEqual(t, got.ProcessingTime, int64(0))

	// system prompt kosong → fallback default
	assert.Equal(t, DefaultSystemPrompt, gotReq["system"])
	assert.Equal(t, "claude-sonnet-4-20250514", gotReq["model"])
	msgs, ok := gotReq["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
}

func TestAnthropicClient_EmptyAPIKey(t *testing.T) {
	client := NewAnthropicClient("", "claude-sonnet-4-20250514", 0.3, 4000, time.Second)

	_, err := client.Complete(context.Background(), "prompt", "")
	require.Error(t, err)
	var serr *ExternalServiceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, ProviderAnthropic, serr.Provider)
}

func TestAnthropicClient_HTTPErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	})

	_, err := client.Complete(context.Background(), "prompt", "")
	require.Error(t, err)
	var serr *ExternalServiceError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "429")
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	})

	_, err := client.Complete(context.Background(), "prompt", "")
	require.Error(t, err)
	var serr *ExternalServiceError
	require.ErrorAs(t, err, &serr)
}

func TestAnthropicClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, "prompt", "")
	require.Error(t, err)
	var serr *ExternalServiceError
	require.ErrorAs(t, err, &serr)
}
