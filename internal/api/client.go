// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the adaptive inference server.
//
// The server exposes two inference modes: a single-shot structured call
// (POST /infer-adaptive) returning a complete JSON payload, and a streaming
// call (POST /infer-stream) delivering token fragments over a chunked body
// as "data: "-framed events. Feedback submission and system statistics
// round out the surface.
package api

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

// Configuration constants for the inference server API.
const (
	// DefaultBaseURL is the default address of the inference server.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the default timeout for structured API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

var (
	// Shared HTTP client with connection pooling for structured requests.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests (no timeout,
	// context-controlled).
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
)

// Error variables for common API failures.
var (
	// ErrServerUnavailable indicates the server could not be reached at all.
	ErrServerUnavailable = errors.New("inference server unavailable")

	// ErrEmptyPrompt indicates an inference call was attempted with no prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// NetworkError represents a failed structured call: either a transport
// failure or a non-success HTTP status from the server.
type NetworkError struct {
	Status  int    // HTTP status code, 0 for transport failures
	Message string // server-provided detail, if any
	Err     error  // underlying transport error, if any
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Status != 0 {
		if e.Message != "" {
			return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
		}
		return fmt.Sprintf("server error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StreamOpenError represents a streaming call whose initial handshake
// failed. Once a stream is open, mid-stream failures are reported as
// StreamError instead.
type StreamOpenError struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *StreamOpenError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("stream open failed (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("stream open failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamOpenError) Unwrap() error {
	return e.Err
}

// apiErrorResponse represents an error payload from the server.
type apiErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// Client is a client for the adaptive inference server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// NewClient creates a new client pointed at the given base URL.
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		timeout:    DefaultTimeout,
		userAgent:  "inferchat/0.1.0",
	}
}

// WithTimeout sets the request timeout for structured calls.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithHTTPClient sets a custom HTTP client, mainly for testing.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// logRequest logs an API request without exposing the body.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// setHeaders sets the required headers for API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorDetail extracts a human-readable message from an error body.
func errorDetail(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// doJSON performs a single JSON request/response exchange.
// Non-2xx statuses are converted to NetworkError.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, respBody any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	c.logRequest(req)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &NetworkError{Err: fmt.Errorf("%w: %v", ErrServerUnavailable, err)}
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(startTime))

	body, err := readResponse(resp)
	if err != nil {
		return &NetworkError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{Status: resp.StatusCode, Message: errorDetail(body)}
	}

	if respBody != nil {
		if err := json.Unmarshal(body, respBody); err != nil {
			return &NetworkError{Status: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
		}
	}
	return nil
}

// InferAdaptive performs a structured inference call.
//
// The server picks a delivery strategy (LoRA adapter, RAG, base model) and
// returns the complete answer in one payload together with routing metadata.
// No retry is attempted; the caller decides how to surface failures.
func (c *Client) InferAdaptive(ctx context.Context, prompt string) (*InferResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	var out InferResponse
	if err := c.doJSON(ctx, http.MethodPost, "/infer-adaptive", &InferRequest{Prompt: prompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendFeedback submits a thumbs up/down rating for a prior exchange.
// Failures here are non-fatal by contract; callers log and move on.
func (c *Client) SendFeedback(ctx context.Context, fb *FeedbackRequest) error {
	var ack FeedbackAck
	if err := c.doJSON(ctx, http.MethodPost, "/feedback", fb, &ack); err != nil {
		return err
	}
	return nil
}

// FetchStats retrieves the current operational counters from the server.
func (c *Client) FetchStats(ctx context.Context) (*SystemStats, error) {
	var out SystemStats
	if err := c.doJSON(ctx, http.MethodGet, "/system-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckRunning verifies the server is reachable via its health endpoint.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return &NetworkError{Status: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}
