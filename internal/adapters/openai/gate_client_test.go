package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
	"github.com/karnsiree/subscription-radar/internal/utils"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GateClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"

	client := NewGateClient(
		openai.NewClientWithConfig(cfg),
		"test-model",
		5,
		0,
		1.0,
		1024,
		zap.NewNop(),
		utils.NewTextProcessor(zap.NewNop()),
	)
	return client, server
}

func completionResponse(content string) string {
	resp := map[string]interface{}{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func testEmail() *core.Email {
	return &core.Email{
		ID:      "1",
		From:    "info@netflix.com",
		Subject: "Your Netflix receipt",
		Snippet: "You have been charged $15.49",
	}
}

func TestIsSubscriptionYes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("YES")))
	})

	verdict, err := client.IsSubscription(context.Background(), testEmail())
	require.NoError(t, err)
	assert.True(t, verdict)
}

func TestIsSubscriptionNormalizesAnswer(t *testing.T) {
	for _, content := range []string{" yes ", "Yes\n", "YES"} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionResponse(content)))
		})

		verdict, err := client.IsSubscription(context.Background(), testEmail())
		require.NoError(t, err)
		assert.True(t, verdict, "content %q", content)
	}
}

func TestIsSubscriptionNo(t *testing.T) {
	for _, content := range []string{"NO", "no", "MAYBE", "YES AND NO"} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionResponse(content)))
		})

		verdict, err := client.IsSubscription(context.Background(), testEmail())
		require.NoError(t, err)
		assert.False(t, verdict, "content %q", content)
	}
}

func TestIsSubscriptionServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	verdict, err := client.IsSubscription(context.Background(), testEmail())
	assert.Error(t, err)
	assert.False(t, verdict)
}

func TestIsSubscriptionEmptyChoices(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	})

	verdict, err := client.IsSubscription(context.Background(), testEmail())
	assert.Error(t, err)
	assert.False(t, verdict)
}

func TestIsSubscriptionSendsGateParameters(t *testing.T) {
	var got openai.ChatCompletionRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("NO")))
	})

	_, err := client.IsSubscription(context.Background(), testEmail())
	require.NoError(t, err)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 5, got.MaxTokens)
	assert.Zero(t, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "YES or NO")
	assert.Contains(t, got.Messages[0].Content, "From: info@netflix.com")
	assert.Contains(t, got.Messages[0].Content, "Subject: Your Netflix receipt")
}
