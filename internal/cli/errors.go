// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for CLI commands.
//
// Every handler returns its error; display and exit-code selection
// happen once, in the dispatcher.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saksham-jain177/inferchat/internal/api"
)

// Exit codes for the different error categories.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{
		Field:   argName,
		Reason:  "required argument missing",
		Example: usage,
	}
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var netErr *api.NetworkError
	var openErr *api.StreamOpenError
	if errors.As(err, &netErr) || errors.As(err, &openErr) || errors.Is(err, api.ErrServerUnavailable) {
		return ExitNetworkError
	}

	if strings.Contains(strings.ToLower(err.Error()), "config") {
		return ExitConfigError
	}

	return ExitGeneralError
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
