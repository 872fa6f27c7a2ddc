// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/saksham-jain177/inferchat/internal/api"
)

// friendlyError converts an api error into the text shown in the
// conversation's error turn.
func friendlyError(err error, serverURL string) string {
	var netErr *api.NetworkError
	var openErr *api.StreamOpenError
	var streamErr *api.StreamError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. The server may be overloaded; try again or raise server.timeout_secs."

	case errors.As(err, &streamErr):
		return fmt.Sprintf("The stream failed partway through: %v. The partial answer above is kept.", streamErr.Err)

	case errors.As(err, &openErr):
		if openErr.Status != 0 {
			return fmt.Sprintf("The server rejected the stream (HTTP %d): %s", openErr.Status, openErr.Message)
		}
		return fmt.Sprintf("Could not reach %s. Is the inference server running?", serverURL)

	case errors.As(err, &netErr):
		if netErr.Status != 0 {
			return fmt.Sprintf("The server returned an error (HTTP %d): %s", netErr.Status, netErr.Message)
		}
		return fmt.Sprintf("Could not reach %s. Is the inference server running?", serverURL)

	default:
		return fmt.Sprintf("Request failed: %v", err)
	}
}
