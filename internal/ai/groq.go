// Package ai generates obituary text through the Groq chat-completions API,
// with a deterministic fallback so callers always get a paragraph back.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thelastshow.org/internal/obs"
)

const (
	defaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel    = "llama-3.3-70b-versatile"
	defaultTimeout  = 30 * time.Second
)

// GroqConfig configures the Groq client. An empty APIKey disables remote
// calls entirely; the client then serves the fallback template.
type GroqConfig struct {
	APIKey     string
	Model      string
	Endpoint   string
	HTTPClient *http.Client
}

// Groq calls the Groq chat-completions endpoint. Every failure path returns
// the fallback text instead of an error: a dead model must never block a
// record from being created.
type Groq struct {
	cfg GroqConfig
}

// NewGroq builds a Groq client, filling defaults for unset fields.
func NewGroq(cfg GroqConfig) *Groq {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	return &Groq{cfg: cfg}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
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

// Obituary returns a respectful obituary paragraph for the given person. The
// remote model is consulted when configured; otherwise, and on any error, the
// deterministic template is used.
func (g *Groq) Obituary(ctx context.Context, name, birthDate, deathDate string) string {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return FallbackText(name, birthDate, deathDate)
	}
	text, err := g.complete(ctx, name, birthDate, deathDate)
	if err != nil {
		obs.CollaboratorFailure("text_generation")
		obs.LogEvent("warn", "text generation degraded", map[string]any{
			"error": err.Error(),
		})
		return FallbackText(name, birthDate, deathDate)
	}
	return text
}

func (g *Groq) complete(ctx context.Context, name, birthDate, deathDate string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short, respectful obituary for %s, born %s, died %s. One paragraph, warm tone, no headings.",
		name, birthDate, deathDate)

	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You write brief, dignified obituaries."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   400,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call groq: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("groq returned empty text")
	}
	return text, nil
}

// FallbackText is the deterministic obituary used when no model is available.
func FallbackText(name, birthDate, deathDate string) string {
	return fmt.Sprintf(
		"%s was born on %s and passed away on %s. They will be deeply missed by family and friends. A memorial service will be held to celebrate their life and legacy.",
		name, birthDate, deathDate)
}
