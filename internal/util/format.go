// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"strconv"
	"time"
)

// FormatPercent renders a percentage with one decimal place, e.g. "33.3%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}

// FormatCount renders an integer count compactly: 950 -> "950",
// 1500 -> "1.5k", 2000000 -> "2.0M".
func FormatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "k"
	default:
		return strconv.Itoa(n)
	}
}

// FormatDuration renders a duration for display: sub-second values in
// milliseconds, everything else in seconds with one decimal.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatTokensPerSec renders a generation rate, e.g. "42.7 tok/s".
func FormatTokensPerSec(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64) + " tok/s"
}
