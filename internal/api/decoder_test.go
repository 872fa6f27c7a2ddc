// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"io"
	"strings"
	"testing"
)

// chunkReader yields at most size bytes per Read call, forcing chunk
// boundaries at fixed offsets.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.size
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

// drain collects all payloads from a decoder until io.EOF.
func drain(t *testing.T, d *EventDecoder) []string {
	t.Helper()
	var payloads []string
	for {
		payload, err := d.Next()
		if err == io.EOF {
			return payloads
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		payloads = append(payloads, payload)
	}
}

func TestEventDecoderBasic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single event",
			input: "data: hello\n",
			want:  []string{"hello"},
		},
		{
			name:  "multiple events in order",
			input: "data: one\ndata: two\ndata: three\n",
			want:  []string{"one", "two", "three"},
		},
		{
			name:  "sentinel terminates without forwarding",
			input: "data: Hel\ndata: lo\ndata: [DONE]\n",
			want:  []string{"Hel", "lo"},
		},
		{
			name:  "events after sentinel are ignored",
			input: "data: a\ndata: [DONE]\ndata: ghost\n",
			want:  []string{"a"},
		},
		{
			name:  "non-prefixed lines dropped",
			input: "event: message\ndata: kept\nid: 42\n: comment\n\n",
			want:  []string{"kept"},
		},
		{
			name:  "leading whitespace in payload preserved",
			input: "data:  world\n",
			want:  []string{" world"},
		},
		{
			name:  "empty payload preserved",
			input: "data: \ndata: x\n",
			want:  []string{"", "x"},
		},
		{
			name:  "crlf line endings",
			input: "data: a\r\ndata: b\r\n",
			want:  []string{"a", "b"},
		},
		{
			name:  "final line without terminator emitted at EOF",
			input: "data: tail",
			want:  []string{"tail"},
		},
		{
			name:  "empty source",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := drain(t, NewEventDecoder(strings.NewReader(tt.input)))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d payloads %q, want %d %q", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("payload[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEventDecoderChunkBoundaries(t *testing.T) {
	// Multi-byte content: accented Latin, CJK, and an emoji, so that
	// every small chunk size lands some boundary mid-codepoint.
	input := "data: héllo 世界 🚀\ndata: ça va\ndata: [DONE]\n"
	want := []string{"héllo 世界 🚀", "ça va"}

	for size := 1; size <= len(input); size++ {
		d := NewEventDecoder(&chunkReader{data: []byte(input), size: size})
		got := drain(t, d)
		if len(got) != len(want) {
			t.Fatalf("chunk size %d: got %q, want %q", size, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("chunk size %d: payload[%d] = %q, want %q", size, i, got[i], want[i])
			}
		}
	}
}

func TestEventDecoderLineSplitAcrossChunks(t *testing.T) {
	// A line boundary must never split a payload even when the "data: "
	// prefix itself straddles a chunk boundary.
	input := "data: first half and second half\ndata: next\n"
	for size := 1; size < 10; size++ {
		d := NewEventDecoder(&chunkReader{data: []byte(input), size: size})
		got := drain(t, d)
		if len(got) != 2 || got[0] != "first half and second half" || got[1] != "next" {
			t.Fatalf("chunk size %d: got %q", size, got)
		}
	}
}

func TestEventDecoderNonRestartable(t *testing.T) {
	d := NewEventDecoder(strings.NewReader("data: only\n"))
	drain(t, d)

	if _, err := d.Next(); err != io.EOF {
		t.Errorf("Next() after exhaustion = %v, want io.EOF", err)
	}
	if _, err := d.Next(); err != io.EOF {
		t.Errorf("repeated Next() after exhaustion = %v, want io.EOF", err)
	}
}
