// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

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

// StreamCallback is called for each token fragment received on a stream.
type StreamCallback func(token string)

// StreamError represents a failure partway through an open stream,
// preserving any content received before the error.
type StreamError struct {
	Partial string // content received before the error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// StreamStats holds statistics collected during streaming.
type StreamStats struct {
	FirstTokenTime time.Duration
	TotalTime      time.Duration
	TokenCount     int
}

// OpenStream issues the streaming inference request and returns the
// response body on a successful handshake. The caller owns the body and
// must close it. A non-success status or transport failure at open time
// is reported as StreamOpenError.
func (c *Client) OpenStream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	bodyBytes, err := json.Marshal(&InferRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/infer-stream", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.logRequest(req)

	// Streaming client has no timeout; lifetime is bound to ctx.
	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, &StreamOpenError{Err: fmt.Errorf("%w: %v", ErrServerUnavailable, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StreamOpenError{Status: resp.StatusCode, Message: errorDetail(body)}
	}

	return resp.Body, nil
}

// InferStream performs a streaming inference call, invoking callback for
// each token fragment in arrival order. It blocks until the stream ends,
// the terminal sentinel arrives, or ctx is cancelled.
//
// A mid-stream failure is returned as a StreamError carrying the partial
// content accumulated so far.
func (c *Client) InferStream(ctx context.Context, prompt string, callback StreamCallback) error {
	body, err := c.OpenStream(ctx, prompt)
	if err != nil {
		return err
	}
	defer body.Close()

	var accumulated strings.Builder
	decoder := NewEventDecoder(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		token, err := decoder.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return &StreamError{Partial: accumulated.String(), Err: err}
		}

		accumulated.WriteString(token)
		callback(token)
	}
}

// InferStreamWithStats performs a streaming call and collects timing
// statistics alongside the callback.
func (c *Client) InferStreamWithStats(ctx context.Context, prompt string, callback StreamCallback) (*StreamStats, error) {
	stats := &StreamStats{}
	startTime := time.Now()
	var firstTokenTime time.Time

	err := c.InferStream(ctx, prompt, func(token string) {
		stats.TokenCount++
		if firstTokenTime.IsZero() {
			firstTokenTime = time.Now()
			stats.FirstTokenTime = firstTokenTime.Sub(startTime)
		}
		callback(token)
	})

	stats.TotalTime = time.Since(startTime)
	return stats, err
}

// InferStreamChan performs a streaming call and returns a channel of
// token fragments. The channel is closed when the stream completes; an
// error, if any, is delivered on the error channel before close.
func (c *Client) InferStreamChan(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	tokenChan := make(chan string, 64)
	errChan := make(chan error, 1)

	go func() {
		defer close(tokenChan)
		defer close(errChan)

		err := c.InferStream(ctx, prompt, func(token string) {
			select {
			case tokenChan <- token:
			case <-ctx.Done():
			}
		})
		if err != nil {
			select {
			case errChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	return tokenChan, errChan
}

// InferStreamAccumulate performs a streaming call and returns the full
// concatenated response once the stream ends. Partial content is
// returned alongside the error when the stream fails midway.
func (c *Client) InferStreamAccumulate(ctx context.Context, prompt string) (string, error) {
	var accumulated strings.Builder

	err := c.InferStream(ctx, prompt, func(token string) {
		accumulated.WriteString(token)
	})

	if err != nil {
		var streamErr *StreamError
		if errors.As(err, &streamErr) && streamErr.Partial != "" {
			return streamErr.Partial, err
		}
		return accumulated.String(), err
	}
	return accumulated.String(), nil
}
