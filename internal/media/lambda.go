// Package media holds the enrichment collaborators: image upload and speech
// synthesis. Both are optional and both degrade to absent URLs on failure.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPImageUploader posts a base64-encoded image to an upload service and
// returns the public URL the service assigned.
type HTTPImageUploader struct {
	url    string
	client *http.Client
}

// NewHTTPImageUploader builds an uploader for the given endpoint.
func NewHTTPImageUploader(url string, client *http.Client) *HTTPImageUploader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPImageUploader{url: url, client: client}
}

type imageUploadRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

type imageUploadResponse struct {
	ImageURL string `json:"image_url"`
}

func (u *HTTPImageUploader) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image payload")
	}
	out, err := postJSON[imageUploadResponse](ctx, u.client, u.url, imageUploadRequest{
		Image:    base64.StdEncoding.EncodeToString(data),
		Filename: filename,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.ImageURL) == "" {
		return "", fmt.Errorf("upload service returned no url")
	}
	return out.ImageURL, nil
}

// HTTPSpeechSynthesizer posts obituary text to a text-to-speech service and
// returns the URL of the rendered audio.
type HTTPSpeechSynthesizer struct {
	url    string
	client *http.Client
}

// NewHTTPSpeechSynthesizer builds a synthesizer for the given endpoint.
func NewHTTPSpeechSynthesizer(url string, client *http.Client) *HTTPSpeechSynthesizer {
	if client == nil {
		// Synthesis is slower than upload; give it more room.
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPSpeechSynthesizer{url: url, client: client}
}

type speechRequest struct {
	Text       string `json:"text"`
	ObituaryID string `json:"obituary_id"`
}

type speechResponse struct {
	AudioURL string `json:"audio_url"`
}

func (s *HTTPSpeechSynthesizer) Synthesize(ctx context.Context, text, obituaryID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty text")
	}
	out, err := postJSON[speechResponse](ctx, s.client, s.url, speechRequest{
		Text:       text,
		ObituaryID: obituaryID,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.AudioURL) == "" {
		return "", fmt.Errorf("speech service returned no url")
	}
	return out.AudioURL, nil
}

func postJSON[T any](ctx context.Context, client *http.Client, url string, payload any) (T, error) {
	var zero T

	body, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return zero, fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
