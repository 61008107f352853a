package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdoneva/cassandra-as-vector-store/internal/core/answer"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": " Katerina and Mateo use Amazon Q. "}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 40, "completion_tokens": 9, "total_tokens": 49}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{WithBaseURL(server.URL)}, opts...)
	client, err := NewClient("test-key", opts...)
	require.NoError(t, err)
	return client
}

func testRequest() answer.ChatRequest {
	return answer.ChatRequest{
		System:      answer.SystemPrompt,
		User:        "Answer this question: Who uses Amazon Q? based on this context Mateo also uses AmazonQ",
		MaxTokens:   256,
		Temperature: 0,
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestClient_CompleteSendsFixedRequestShape(t *testing.T) {
	var body map[string]any
	var path, auth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	text, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "Katerina and Mateo use Amazon Q.", text)

	assert.True(t, strings.HasSuffix(path, "/chat/completions"), path)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, DefaultModel, body["model"])
	assert.EqualValues(t, 256, body["max_tokens"])
	assert.EqualValues(t, 0, body["temperature"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, answer.SystemPrompt, messages[0].(map[string]any)["content"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestClient_CompleteClassifiesFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "認証エラー",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`,
			wantErr: answer.ErrAuthentication,
		},
		{
			name:    "権限エラー",
			status:  http.StatusForbidden,
			body:    `{"error": {"message": "forbidden", "type": "invalid_request_error"}}`,
			wantErr: answer.ErrAuthentication,
		},
		{
			name:    "レート制限",
			status:  http.StatusTooManyRequests,
			body:    `{"error": {"message": "slow down", "type": "rate_limit"}}`,
			wantErr: answer.ErrRateLimited,
		},
		{
			name:    "サーバーエラー",
			status:  http.StatusServiceUnavailable,
			body:    `{"error": {"message": "overloaded", "type": "server_error"}}`,
			wantErr: answer.ErrProvider,
		},
		{
			name:    "choicesが空",
			status:  http.StatusOK,
			body:    `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`,
			wantErr: answer.ErrMalformedResponse,
		},
		{
			name:    "本文が空",
			status:  http.StatusOK,
			body:    `{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": [{"index": 0, "message": {"role": "assistant", "content": ""}, "finish_reason": "stop"}]}`,
			wantErr: answer.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), testRequest())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, calls, "SDK retries must be disabled")
		})
	}
}

func TestClient_CompleteNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient("test-key", WithBaseURL(url))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), testRequest())
	assert.ErrorIs(t, err, answer.ErrNetwork)
	assert.Equal(t, answer.FailureNetwork, answer.Classify(err))
}

func TestClient_CompleteTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	_, err := client.Complete(context.Background(), testRequest())
	assert.ErrorIs(t, err, answer.ErrTimeout)
}

func TestClient_ModelOverride(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}, WithModel("custom/model"))

	_, err := client.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "custom/model", body["model"])
	assert.Equal(t, "custom/model", client.ModelName())
}
