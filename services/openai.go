package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"vayro/config"
	"vayro/logger"
	"vayro/metrics"
)

type AIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var aiClient *AIClient

// NewAIClient builds a chat-completions client for an OpenAI-compatible API.
func NewAIClient(cfg config.OpenAIConfig) *AIClient {
	return &AIClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func InitAI(cfg config.OpenAIConfig) {
	aiClient = NewAIClient(cfg)

	log := logger.GetLogger()
	if aiClient.apiKey != "" {
		log.Infow("AI client initialized", "model", cfg.Model, "api_key", logger.MaskSecret(cfg.APIKey))
	} else {
		log.Warn("OPENAI_API_KEY not set, trip plans and chat are unavailable")
	}
}

func GetAIClient() *AIClient {
	return aiClient
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends messages to the chat completions endpoint and returns the
// trimmed text of the first choice. A nil temperature uses the API default.
func (c *AIClient) Complete(ctx context.Context, messages []ChatMessage, temperature *float64) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", fmt.Errorf("openai: %w", ErrNotConfigured)
	}

	jsonBody, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("openai").Inc()
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamErrors.WithLabelValues("openai").Inc()
		return "", &UpstreamError{Service: "openai", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// Prompt is Complete with a single user message.
func (c *AIClient) Prompt(ctx context.Context, prompt string, temperature *float64) (string, error) {
	return c.Complete(ctx, []ChatMessage{{Role: "user", Content: prompt}}, temperature)
}

// Temperature is a helper for the optional temperature argument.
func Temperature(t float64) *float64 {
	return &t
}
