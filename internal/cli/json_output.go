// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Standardized JSON output for scripting.
package cli

import (
	"encoding/json"
	"os"
	"time"
)

// JSONResponse is the envelope for all --json command output.
type JSONResponse struct {
	Success   bool    `json:"success"`
	Data      any     `json:"data"`
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command,omitempty"`
}

// NewJSONResponse creates a successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print outputs the JSON response to stdout.
func (r *JSONResponse) Print() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// DATA PAYLOADS
// =============================================================================

// VersionData is the payload for "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// AskData is the payload for "ask --json".
type AskData struct {
	Query       string  `json:"query"`
	Response    string  `json:"response"`
	Mode        string  `json:"mode,omitempty"`
	Domain      string  `json:"domain,omitempty"`
	ContextUsed bool    `json:"context_used"`
	ElapsedSecs float64 `json:"elapsed_secs"`
}

// StatusData is the payload for "status --json".
type StatusData struct {
	Server         string         `json:"server"`
	Reachable      bool           `json:"reachable"`
	Status         string         `json:"status"`
	ActiveRequests int            `json:"active_requests"`
	TotalRequests  int            `json:"total_requests"`
	TotalErrors    int            `json:"total_errors"`
	ErrorRate      float64        `json:"error_rate_pct"`
	CacheHits      int            `json:"cache_hits"`
	CacheMisses    int            `json:"cache_misses"`
	CacheHitRate   float64        `json:"cache_hit_rate_pct"`
	AdapterUsage   map[string]int `json:"adapter_usage,omitempty"`
}
