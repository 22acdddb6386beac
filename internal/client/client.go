// Package client submits inputs to the remote fact-checking service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/util"
)

// TransportError is a non-2xx response from the service.
// Body carries the response text as diagnostic.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned HTTP %d: %s", e.StatusCode, body)
}

// ServiceError is an error-shaped body ({"error": "..."}) with a 2xx status
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "service error: " + e.Message
}

// ErrEmptyResponse is returned when the service sends no body
var ErrEmptyResponse = errors.New("service returned an empty response")

// Client talks to the fact-checking service over HTTP
type Client struct {
	httpClient *http.Client
	baseURL    string
	textPath   string
	imagePath  string
	userAgent  string
	maxBytes   int64
}

// New creates a client from the service configuration.
// A zero timeout leaves requests unbounded.
func New(cfg model.ServiceConfig) *Client {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 10_000_000
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		textPath:  cfg.TextPath,
		imagePath: cfg.ImagePath,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
	}
}

// Endpoint returns the URL a request of the given kind is posted to
func (c *Client) Endpoint(kind model.RequestKind) string {
	if kind == model.RequestImage {
		return c.baseURL + c.imagePath
	}
	return c.baseURL + c.textPath
}

// Check submits one request and decodes the response envelope
func (c *Client) Check(ctx context.Context, req model.Request) (*model.ResponseEnvelope, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(req.Kind()), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}

	var env model.ResponseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if env.Error != "" {
		return nil, &ServiceError{Message: env.Error}
	}

	return &env, nil
}
