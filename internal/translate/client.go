package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marquee/internal/retry"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	defaultAttempts    = 2
	defaultRetryDelay  = 500 * time.Millisecond
)

// Config captures the runtime settings required to talk to the translation
// service (LibreTranslate-compatible API).
type Config struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
	Attempts       int
}

// Client wraps the translation HTTP API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	policy     retry.Policy
}

var _ Translator = (*Client)(nil)

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

// WithRetryPolicy overrides the retry behavior.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// NewClient constructs a translation client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("translator base url required")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = defaultAttempts
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		policy: retry.Policy{
			Attempts: attempts,
			Delay:    defaultRetryDelay,
			Timeout:  timeout,
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate sends text to the translation service. The source language is
// auto-detected server side.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return "", errors.New("translate: target language required")
	}

	var translated string
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		result, err := c.translateOnce(ctx, text, targetLang)
		if err != nil {
			return err
		}
		translated = result
		return nil
	})
	if err != nil {
		return "", err
	}
	return translated, nil
}

func (c *Client) translateOnce(ctx context.Context, text, targetLang string) (string, error) {
	payload := translateRequest{
		Q:      text,
		Source: "auto",
		Target: targetLang,
		APIKey: c.cfg.APIKey,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("translate: encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/translate", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("translate: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := decoded.Error
		if msg == "" {
			msg = "unexpected failure"
		}
		return "", fmt.Errorf("translate: http %d: %s", resp.StatusCode, msg)
	}
	if strings.TrimSpace(decoded.TranslatedText) == "" {
		return "", errors.New("translate: empty translation")
	}
	return decoded.TranslatedText, nil
}
