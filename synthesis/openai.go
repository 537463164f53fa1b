// ABOUTME: This file implements the OpenAI-compatible chat backend
// ABOUTME: Used as the remote alternative when the local backend is exhausted
package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/andrewvu270/MindForge-sub000/domain"
)

type openAIBackend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenAIBackend targets an OpenAI-compatible chat completions endpoint.
// The key is required; construction fails without it so a misconfigured
// deployment is caught at startup, not at generation time.
func NewOpenAIBackend(baseURL, apiKey, model string, client *http.Client) (Backend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai backend: %w (set SYNTHESIS_OPENAI_KEY)", domain.ErrMissingCredentials)
	}
	return &openAIBackend{baseURL: baseURL, apiKey: apiKey, model: model, client: client}, nil
}

func (b *openAIBackend) Name() string { return "openai" }

type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (b *openAIBackend) Generate(ctx context.Context, prompt string) (string, error) {
	payload := chatPayload{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   1200,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &domain.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", domain.ErrEmptyGeneration
	}

	return parsed.Choices[0].Message.Content, nil
}
