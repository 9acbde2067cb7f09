// Package genai is a minimal client for the Gemini generateContent REST API.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 30 * time.Second
)

// ErrNoAPIKey is returned by every call when no API key is configured.
var ErrNoAPIKey = errors.New("gemini api key not configured")

// ErrEmptyResponse means the service answered without any candidate text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// APIError is a non-200 response from the service. Quota exhaustion shows
// up as StatusCode 429.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini: status %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Client calls one fixed model. It is safe for concurrent use.
type Client struct {
	rc     *resty.Client
	apiKey string
	model  string
}

// NewClient creates a client for the public endpoint.
func NewClient(apiKey, model string) *Client {
	return NewClientWithBaseURL(apiKey, model, DefaultBaseURL)
}

// NewClientWithBaseURL creates a client pointing at a custom base URL (for testing).
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultTimeout)
	return &Client{rc: rc, apiKey: apiKey, model: model}
}

// WithModel returns a client sharing the transport but bound to model.
func (c *Client) WithModel(model string) *Client {
	cp := *c
	cp.model = model
	return &cp
}

// Model is the model name requests are sent to.
func (c *Client) Model() string { return c.model }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends a single-turn prompt and returns the trimmed text of the
// first candidate. There are no retries.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if c.model == "" {
		return "", errors.New("gemini model not set")
	}

	req := generateRequest{Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}}}
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetPathParam("model", c.model).
		SetBody(&req).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", apiError(resp)
	}

	var gr generateResponse
	if err := json.Unmarshal(resp.Body(), &gr); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func apiError(resp *resty.Response) error {
	e := &APIError{StatusCode: resp.StatusCode()}
	var env errorEnvelope
	if json.Unmarshal(resp.Body(), &env) == nil && env.Error.Message != "" {
		e.Status = env.Error.Status
		e.Message = env.Error.Message
	} else {
		e.Message = strings.TrimSpace(resp.String())
	}
	return e
}
