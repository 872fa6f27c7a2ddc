// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// InferRequest is the body sent to both inference endpoints.
type InferRequest struct {
	Prompt string `json:"prompt"`
}

// InferResponse is the payload returned by the structured inference
// endpoint. Older server versions populate "message" instead of
// "response"; Text handles the fallback.
type InferResponse struct {
	Response    string `json:"response"`
	Message     string `json:"message"`
	Mode        string `json:"mode"`         // "adapter", "rag-external", "internal-reasoning", "base-model", ...
	Domain      string `json:"domain"`       // routed domain, e.g. "general", "medical"
	ContextUsed bool   `json:"context_used"` // true when retrieval context informed the answer
}

// Text returns the answer text, preferring "response" over "message".
func (r *InferResponse) Text() string {
	if r.Response != "" {
		return r.Response
	}
	return r.Message
}

// Rating values accepted by the feedback endpoint.
const (
	RatingUp   = 1
	RatingDown = -1
)

// FeedbackRequest is the body for POST /feedback. Query is the user
// prompt that produced the rated response.
type FeedbackRequest struct {
	Query     string `json:"query"`
	Response  string `json:"response"`
	Rating    int    `json:"rating"` // +1 or -1
	ModelMode string `json:"model_mode"`
}

// FeedbackAck is the acknowledgment returned by the feedback endpoint.
type FeedbackAck struct {
	Status string `json:"status"`
}

// SystemStats mirrors the raw counters returned by GET /system-stats.
// Interpretation (status classification, rates) lives in the health
// package; this type is a pure wire projection.
type SystemStats struct {
	ActiveRequests int            `json:"active_requests"`
	TotalRequests  int            `json:"total_requests"`
	TotalErrors    int            `json:"total_errors"`
	CacheHits      int            `json:"cache_hits"`
	CacheMisses    int            `json:"cache_misses"`
	AdapterUsage   map[string]int `json:"adapter_usage"`
}
