// Package sse provides a minimal, purpose-built decoder for the
// "data: <json>" line framing that LLM providers use for streamed responses.
// It turns the raw chunks of an HTTP response body into an ordered, lazy
// sequence of text fragments as soon as each chunk arrives.
//
// This package intentionally does NOT implement the full SSE event model
// (event types, ids, multi-line data joins, retry). Lines that are not
// "data: " lines are dropped.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	// DataPrefix marks a candidate payload line.
	DataPrefix = "data: "

	// DoneSentinel is the payload that signals normal stream termination.
	DoneSentinel = "[DONE]"

	defaultReadSize = 32 * 1024

	// maxLineSize bounds the carried partial line in reassembly mode.
	maxLineSize = 1024 * 1024
)

// Extractor pulls a text fragment out of a single data payload. It returns
// false when the payload should be dropped (malformed JSON, unexpected shape).
type Extractor func(payload []byte) (string, bool)

// LineMode selects how lines are recovered from chunk boundaries.
type LineMode int

const (
	// LinesPerChunk splits every chunk on its own. The unterminated tail of a
	// chunk is processed as a line at the end of that chunk and nothing is
	// carried forward, so a data line split across two chunks is lost.
	LinesPerChunk LineMode = iota

	// LinesReassemble carries the unterminated tail of a chunk into the next
	// one, so a line is only processed once its newline has arrived.
	LinesReassemble
)

// State is the lifecycle state of a Decoder.
type State int

const (
	StateStreaming State = iota
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "done"
	}
	return "streaming"
}

// Decoder turns a chunked byte stream into text fragments.
//
// ┌──────────────────┐
// │ source io.Reader │  one Read == one raw chunk
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌──────────────────────┐
// │  Decoder.Feed()  │──▶│ tee io.Writer (opt.) │
// └──────────────────┘   └──────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │  text fragments  │
// └──────────────────┘
//
// A Decoder is owned by a single goroutine and is not restartable: create a
// fresh one per response.
type Decoder struct {
	src      io.Reader
	extract  Extractor
	tee      io.Writer
	mode     LineMode
	readSize int

	// buf holds at most one partial line: the unresolved suffix of every
	// byte seen so far. It is always empty between chunks in LinesPerChunk.
	buf []byte

	state   State
	sawDone bool
}

// Option configures a Decoder created with NewDecoder.
type Option func(*Decoder)

// WithReassembly makes the decoder carry partial lines across chunks.
func WithReassembly() Option {
	return func(d *Decoder) {
		d.mode = LinesReassemble
	}
}

// WithReadSize sets the buffer size used for each Read of the source.
func WithReadSize(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.readSize = n
		}
	}
}

// WithTee writes every raw chunk verbatim to w before it is decoded.
func WithTee(w io.Writer) Option {
	return func(d *Decoder) {
		d.tee = w
	}
}

// NewDecoder returns a Decoder reading raw chunks from src and extracting
// fragments from data payloads with extract.
func NewDecoder(src io.Reader, extract Extractor, opts ...Option) *Decoder {
	d := &Decoder{
		src:      src,
		extract:  extract,
		mode:     LinesPerChunk,
		readSize: defaultReadSize,
		state:    StateStreaming,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// State reports whether the decoder is still streaming.
func (d *Decoder) State() State {
	return d.state
}

// SawDone reports whether a "data: [DONE]" line has been observed.
func (d *Decoder) SawDone() bool {
	return d.sawDone
}

// Mode returns the line mode in use.
func (d *Decoder) Mode() LineMode {
	return d.mode
}

// Fragments returns the lazy sequence of text fragments. Each chunk is read
// only when the consumer asks for more. Source exhaustion (io.EOF) ends the
// sequence normally; any other read error is yielded once as ("", err) and
// ends it. Once ended, or once the consumer stops early, the decoder is done
// and later calls yield nothing.
func (d *Decoder) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if d.state == StateDone {
			return
		}
		defer func() { d.state = StateDone }()

		chunk := make([]byte, d.readSize)
		for {
			n, err := d.src.Read(chunk)
			if n > 0 {
				if d.tee != nil {
					if _, werr := d.tee.Write(chunk[:n]); werr != nil {
						yield("", fmt.Errorf("writing stream copy: %w", werr))
						return
					}
				}

				for _, fragment := range d.Feed(chunk[:n]) {
					if !yield(fragment, nil) {
						return
					}
				}
			}

			if errors.Is(err, io.EOF) {
				for _, fragment := range d.flush() {
					if !yield(fragment, nil) {
						return
					}
				}
				return
			}

			if err != nil {
				yield("", err)
				return
			}
		}
	}
}

// Feed processes one raw chunk and returns the fragments it produced, in
// order. It never fails: malformed lines are dropped.
func (d *Decoder) Feed(chunk []byte) []string {
	d.buf = append(d.buf, chunk...)

	lines := bytes.Split(d.buf, []byte{'\n'})
	tail := lines[len(lines)-1]
	lines = lines[:len(lines)-1]

	if d.mode == LinesPerChunk {
		lines = append(lines, tail)
		d.buf = d.buf[:0]
	} else {
		// Copy the tail out so the next append cannot clobber lines
		// still being processed.
		d.buf = append([]byte(nil), tail...)
		if len(d.buf) > maxLineSize {
			d.buf = d.buf[:0]
		}
	}

	fragments, stopped := d.processLines(lines)
	if stopped {
		// Everything after [DONE] in this chunk is ignored, including a
		// carried partial line.
		d.buf = d.buf[:0]
	}

	return fragments
}

// flush processes a partial line left at end of stream.
func (d *Decoder) flush() []string {
	if len(d.buf) == 0 {
		return nil
	}

	line := d.buf
	d.buf = nil
	fragments, _ := d.processLines([][]byte{line})
	return fragments
}

// processLines runs the per-line rules over complete lines. It reports true
// when it stopped early at the [DONE] sentinel.
func (d *Decoder) processLines(lines [][]byte) ([]string, bool) {
	var fragments []string

	for _, raw := range lines {
		line := strings.TrimSuffix(lossyString(raw), "\r")

		payload, ok := strings.CutPrefix(line, DataPrefix)
		if !ok {
			// Blank keep-alives, ": comments", "event:" lines and the like.
			continue
		}

		payload = strings.TrimSpace(payload)
		if payload == DoneSentinel {
			d.sawDone = true
			return fragments, true
		}

		if text, ok := d.extract([]byte(payload)); ok {
			fragments = append(fragments, text)
		}
	}

	return fragments, false
}

// lossyString decodes b as UTF-8 with one U+FFFD per invalid byte.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b))
	for _, r := range string(b) {
		sb.WriteRune(r)
	}
	return sb.String()
}
