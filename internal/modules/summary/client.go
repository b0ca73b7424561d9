package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotConfigured = errors.New("summary: api key not configured")
	ErrFailed        = errors.New("summary: generation failed")

	errNoText = errors.New("returned no text")
)

const promptPrefix = "Summarize this consultation request in 2-4 short sentences for an astrologer. " +
	"Keep it professional and focused on key concerns.\n\nRequest:\n"

// DefaultModels is the fallback order used when none is configured.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}

type Config struct {
	APIKey  string
	BaseURL string
	Models  []string
	Timeout time.Duration
}

// Client calls the Gemini generateContent endpoint. Models are tried in
// order, moving on when a model answers 404 or answers without text.
type Client struct {
	apiKey  string
	baseURL string
	models  []string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	models := cfg.Models
	if len(models) == 0 {
		models = DefaultModels
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		models:  models,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty input", ErrFailed)
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: promptPrefix + text}}}},
		GenerationConfig: generationConfig{MaxOutputTokens: 256, Temperature: 0.3},
	})
	if err != nil {
		return "", err
	}

	for _, model := range c.models {
		out, status, err := c.generate(ctx, model, body)
		if status == http.StatusNotFound {
			log.Printf("summary: model %s not found, trying next", model)
			continue
		}
		if errors.Is(err, errNoText) {
			log.Printf("summary: model %s returned no text, trying next", model)
			continue
		}
		if err != nil {
			return "", err
		}
		return out, nil
	}
	return "", fmt.Errorf("%w: no model available (tried %s)", ErrFailed, strings.Join(c.models, ", "))
}

func (c *Client) generate(ctx context.Context, model string, body []byte) (string, int, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", resp.StatusCode, fmt.Errorf("%w: %s returned %d: %s", ErrFailed, model, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", resp.StatusCode, fmt.Errorf("%w: decode: %v", ErrFailed, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", resp.StatusCode, fmt.Errorf("%w: %s %w", ErrFailed, model, errNoText)
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", resp.StatusCode, fmt.Errorf("%w: %s %w", ErrFailed, model, errNoText)
	}
	return text, resp.StatusCode, nil
}
