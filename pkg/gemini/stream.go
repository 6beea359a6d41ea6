package gemini

import (
	"io"
	"iter"

	"github.com/papercomputeco/gemcli/pkg/sse"
)

// Stream is an open streamGenerateContent response.
type Stream struct {
	body    io.ReadCloser
	decoder *sse.Decoder
}

// NewStream decodes body as a Gemini SSE response.
func NewStream(body io.ReadCloser, opts ...sse.Option) *Stream {
	return &Stream{
		body:    body,
		decoder: sse.NewDecoder(body, ExtractText, opts...),
	}
}

// Fragments yields the text of each frame as it arrives. A transport error
// is yielded once and ends the sequence.
func (s *Stream) Fragments() iter.Seq2[string, error] {
	return s.decoder.Fragments()
}

// SawDone reports whether the server sent the [DONE] sentinel.
func (s *Stream) SawDone() bool {
	return s.decoder.SawDone()
}

// Close releases the underlying connection.
func (s *Stream) Close() error {
	return s.body.Close()
}
