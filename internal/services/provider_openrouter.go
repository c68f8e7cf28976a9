package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenRouterConfig configures the OpenRouter chat completions client
type OpenRouterConfig struct {
	APIKey   string
	URL      string
	Model    string
	SiteURL  string
	SiteName string
}

// OpenRouterClient calls an OpenAI-compatible chat completions endpoint
type OpenRouterClient struct {
	config     OpenRouterConfig
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenRouterClient creates a new OpenRouter client
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.URL == "" {
		cfg.URL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return &OpenRouterClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Name returns the provider name
func (c *OpenRouterClient) Name() string {
	return "openrouter"
}

// Complete sends the prompt as a single user message
func (c *OpenRouterClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.config.APIKey == "" {
		return "", &ProviderError{Provider: c.Name(), Err: errors.New("API Key Missing")}
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.config.SiteURL)
	}
	if c.config.SiteName != "" {
		req.Header.Set("X-Title", c.config.SiteName)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: c.Name(), StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil || len(result.Choices) == 0 {
		// A 200 with an unexpected body is treated as an empty reply, which
		// the parser turns into a default report
		return "", nil
	}

	return result.Choices[0].Message.Content, nil
}
