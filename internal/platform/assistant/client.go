package assistant

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

	"github.com/floorhouse/site/internal/services"
)

const defaultTimeout = 20 * time.Second

// ErrEndpointMissing is returned when the client has no endpoint configured.
var ErrEndpointMissing = errors.New("assistant: endpoint is not configured")

// Client forwards questions and retrieved catalog context to an external
// answer backend. It implements services.Answerer.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer token sent with each request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout overrides the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient constructs a backend client for the given endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointMissing
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type answerPayload struct {
	Answer string `json:"answer"`
}

// Answer posts the request as JSON and returns the answer text.
func (c *Client) Answer(ctx context.Context, req services.AnswerRequest) (string, error) {
	if c == nil || c.endpoint == "" {
		return "", ErrEndpointMissing
	}
	if req.Context == nil {
		req.Context = []services.AssistantMatch{}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("assistant: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("assistant: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("assistant: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var out answerPayload
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("assistant: decode response: %w", err)
	}
	return strings.TrimSpace(out.Answer), nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
