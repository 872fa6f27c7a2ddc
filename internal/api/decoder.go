// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Framing constants for the event protocol.
const (
	// eventPrefix marks a line carrying an event payload.
	eventPrefix = "data: "

	// doneSentinel terminates the stream when received as a payload.
	doneSentinel = "[DONE]"

	// readChunkSize is the buffer size for raw reads from the body.
	readChunkSize = 4 * 1024

	// maxDecodedSize caps the decoded output per chunk. A multi-byte
	// sequence never expands beyond 4x under UTF-8 replacement.
	maxDecodedSize = 4 * readChunkSize
)

// EventDecoder converts a raw byte stream into an ordered sequence of
// event payload strings.
//
// Framing rules:
//   - Bytes are decoded as UTF-8 with a stateful decoder, so a chunk
//     boundary falling inside a multi-byte codepoint is handled without
//     data loss.
//   - Lines are split on '\n'; a trailing partial line is held back and
//     completed by the next chunk.
//   - Lines starting with "data: " yield the remainder as one payload.
//     All other lines are framing noise and dropped.
//   - A payload equal to "[DONE]" ends the sequence without being
//     forwarded.
//
// The sequence is finite and non-restartable; Next returns io.EOF once
// exhausted.
type EventDecoder struct {
	src     io.Reader
	dec     transform.Transformer
	raw     []byte   // undecoded bytes carried across reads
	pending string   // decoded text with no line terminator yet
	queue   []string // payloads decoded but not yet returned
	done    bool
	err     error
}

// NewEventDecoder creates a decoder over the given byte source,
// typically an open HTTP response body.
func NewEventDecoder(src io.Reader) *EventDecoder {
	return &EventDecoder{
		src: src,
		dec: unicode.UTF8.NewDecoder(),
	}
}

// Next returns the next event payload in arrival order.
// It returns io.EOF when the source ends or the terminal sentinel is
// observed. Any other error is a read failure from the source.
func (d *EventDecoder) Next() (string, error) {
	for {
		if len(d.queue) > 0 {
			payload := d.queue[0]
			d.queue = d.queue[1:]
			return payload, nil
		}
		if d.done {
			if d.err != nil {
				return "", d.err
			}
			return "", io.EOF
		}
		if err := d.fill(); err != nil {
			d.done = true
			if err != io.EOF {
				d.err = err
			}
		}
	}
}

// fill reads one chunk from the source and queues any complete payloads.
func (d *EventDecoder) fill() error {
	buf := make([]byte, readChunkSize)
	n, readErr := d.src.Read(buf)
	if n > 0 {
		d.raw = append(d.raw, buf[:n]...)
		d.decodeRaw(false)
	}
	if readErr != nil {
		if readErr == io.EOF {
			// Flush the decoder and treat any unterminated final
			// line as complete.
			d.decodeRaw(true)
			if d.pending != "" {
				d.acceptLine(d.pending)
				d.pending = ""
			}
			return io.EOF
		}
		return fmt.Errorf("stream read failed: %w", readErr)
	}
	return nil
}

// decodeRaw converts buffered raw bytes to text, retaining any trailing
// partial multi-byte sequence for the next chunk. atEOF forces the
// decoder to flush, replacing an incomplete trailing sequence.
func (d *EventDecoder) decodeRaw(atEOF bool) {
	if len(d.raw) == 0 {
		return
	}
	dst := make([]byte, maxDecodedSize)
	for len(d.raw) > 0 {
		nDst, nSrc, err := d.dec.Transform(dst, d.raw, atEOF)
		if nDst > 0 {
			d.splitLines(string(dst[:nDst]))
		}
		d.raw = d.raw[nSrc:]
		if err == transform.ErrShortSrc {
			// Partial codepoint at the tail, wait for more bytes.
			if !atEOF {
				return
			}
			continue
		}
		if err == transform.ErrShortDst {
			continue
		}
		if err != nil {
			// The UTF-8 decoder substitutes rather than fails;
			// anything else means drop the malformed remainder.
			d.raw = nil
			return
		}
	}
}

// splitLines folds decoded text into the line buffer, emitting every
// completed line.
func (d *EventDecoder) splitLines(text string) {
	if d.done {
		return
	}
	d.pending += text
	for {
		idx := strings.IndexByte(d.pending, '\n')
		if idx < 0 {
			return
		}
		line := d.pending[:idx]
		d.pending = d.pending[idx+1:]
		d.acceptLine(line)
		if d.done {
			d.pending = ""
			return
		}
	}
}

// acceptLine applies the framing rules to one complete line.
func (d *EventDecoder) acceptLine(line string) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasPrefix(line, eventPrefix) {
		return
	}
	payload := line[len(eventPrefix):]
	if payload == doneSentinel {
		d.done = true
		return
	}
	d.queue = append(d.queue, payload)
}
