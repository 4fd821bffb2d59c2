package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"vayro/config"
	"vayro/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func newTestAI(t *testing.T, handler http.HandlerFunc) *AIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAIClient(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL})
}

func TestAIClientComplete(t *testing.T) {
	var got chatRequest
	client := newTestAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "  hello there \n"}}]}`))
	})

	out, err := client.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: "hi"},
	}, Temperature(0.6))
	require.NoError(t, err)

	assert.Equal(t, "hello there", out)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.6, *got.Temperature)
}

func TestAIClientNoChoices(t *testing.T) {
	client := newTestAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	})

	out, err := client.Prompt(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAIClientUpstreamError(t *testing.T) {
	client := newTestAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	})

	_, err := client.Prompt(context.Background(), "hi", nil)
	require.Error(t, err)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAIClientNotConfigured(t *testing.T) {
	client := NewAIClient(config.OpenAIConfig{})
	_, err := client.Prompt(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))

	var nilClient *AIClient
	_, err = nilClient.Prompt(context.Background(), "hi", nil)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestStatusCodeDefault(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("boom")))
}
