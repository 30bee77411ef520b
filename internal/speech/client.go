package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://api.murf.ai/v1/speech/generate"
	maxReplyBytes     = 64 << 20
	apiKeyHeader      = "api-key"
	defaultAudioAgent = "reelsmith"
)

// Request is a single text-to-speech generation.
type Request struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
	Format  string `json:"format"`
}

// Config captures the runtime settings required to talk to the provider.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout bounds each HTTP exchange. Zero means no timeout.
	Timeout time.Duration
}

// Client talks to the speech provider over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a provider client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			BaseURL: strings.TrimSpace(cfg.BaseURL),
			APIKey:  strings.TrimSpace(cfg.APIKey),
			Timeout: cfg.Timeout,
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

// HTTPStatusError reports a non-2xx provider or download reply.
type HTTPStatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, strings.TrimSpace(e.Body))
}

// Generate submits req and decodes the provider reply into a Response.
func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, errors.New("speech generate: api key required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("speech generate: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("speech generate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speech generate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("speech generate: read reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{Op: "speech generate", StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return DecodeResponse(body)
}

// Download streams the audio at url into w.
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("speech download: build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", defaultAudioAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("speech download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &HTTPStatusError{Op: "speech download", StatusCode: resp.StatusCode, Body: string(body)}
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("speech download: read body: %w", err)
	}
	return n, nil
}
