// Package gemini is a focused client for the Gemini OpenAI-compatible chat
// completions endpoint.
package gemini

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

	"portfolio-backend/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// chatRequest is the minimal request shape for the chat completions endpoint.
type chatRequest struct {
	Model       string                  `json:"model"`
	Messages    []domain.ChatMessage    `json:"messages"`
	Tools       []domain.ToolDefinition `json:"tools,omitempty"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature *float64                `json:"temperature,omitempty"`
}

// chatResponse is the minimal response shape returned by the endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int                `json:"index"`
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the Gemini OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a Client holding the given API key. Resolving the key is
// the caller's concern; a missing key is a configuration error at that layer.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		// Tool round-trips mean more than one upstream call per turn.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// resolvedHTTPClient returns the configured HTTP client, or a default with a
// 30s timeout if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + "/chat/completions"
}

// Chat executes one chat completion call and returns the assistant message.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage, settings domain.RunSettings) (domain.ChatResult, error) {
	if model == "" {
		return domain.ChatResult{}, errors.New("gemini: model must not be empty")
	}
	if len(messages) == 0 {
		return domain.ChatResult{}, errors.New("gemini: messages must not be empty")
	}

	payload := chatRequest{
		Model:     model,
		Messages:  messages,
		Tools:     settings.Tools,
		MaxTokens: settings.MaxTokens,
	}
	if settings.Temperature > 0 {
		payload.Temperature = &settings.Temperature
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)

	req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if reqErr != nil {
		return domain.ChatResult{}, fmt.Errorf("gemini: create request: %w", reqErr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("gemini: request failed: %w", err)
	}

	var parsed chatResponse
	if decErr := json.Unmarshal(raw, &parsed); decErr != nil {
		return domain.ChatResult{}, fmt.Errorf("gemini: decode response: %w", decErr)
	}
	if len(parsed.Choices) == 0 {
		return domain.ChatResult{}, errors.New("gemini: no choices in response")
	}
	msg := parsed.Choices[0].Message

	return domain.ChatResult{
		Content:   msg.Content,
		ToolCalls: msg.ToolCalls,
	}, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
