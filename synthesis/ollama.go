// ABOUTME: This file implements the local Ollama generation backend
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

type ollamaBackend struct {
	host   string
	model  string
	client *http.Client
}

// NewOllamaBackend targets a local Ollama-compatible generate endpoint.
func NewOllamaBackend(host, model string, client *http.Client) Backend {
	return &ollamaBackend{host: host, model: model, client: client}
}

func (b *ollamaBackend) Name() string { return "ollama" }

type ollamaPayload struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (b *ollamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	payload := ollamaPayload{
		Model:  b.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: 0.3,
			TopP:        0.9,
			NumPredict:  1200,
			NumCtx:      8192,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &domain.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.Response, nil
}
