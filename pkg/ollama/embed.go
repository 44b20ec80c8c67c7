// Package ollama provides an embedding client backed by Ollama's HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// EmbedClient turns text into embeddings via a local Ollama server.
type EmbedClient struct {
	baseURL string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures an EmbedClient.
type Option func(*EmbedClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *EmbedClient) { e.client = c }
}

// WithRateLimit caps requests per second against the model server.
func WithRateLimit(rps float64, burst int) Option {
	return func(e *EmbedClient) { e.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// NewEmbedClient creates an Ollama embedding client.
func NewEmbedClient(baseURL, model string, opts ...Option) *EmbedClient {
	c := &EmbedClient{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Model returns the configured model name.
func (c *EmbedClient) Model() string { return c.model }

type embedReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResp struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding for one text.
func (c *EmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("ollama: rate limit wait: %w", err)
		}
	}

	body, _ := json.Marshal(embedReq{Model: c.model, Prompt: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama: embed: status %d", resp.StatusCode)
	}

	var result embedResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama: embed decode: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama: embed: empty embedding for model %s", c.model)
	}

	out := make([]float32, len(result.Embedding))
	for i, v := range result.Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

// EmbedBatch embeds each text in order. Ollama has no batch endpoint, so this
// issues sequential requests.
func (c *EmbedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vals, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("ollama: embed batch [%d]: %w", i, err)
		}
		out[i] = vals
	}
	return out, nil
}
