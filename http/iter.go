package http

import (
	"io"
	"iter"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
)

// BodyIter is an outgoing body of a known length, produced by the source. The source must
// produce exactly contentLength bytes in total.
type BodyIter struct {
	source        iter.Seq[[]byte]
	contentLength int64
	state         State
}

func NewBodyIter(source iter.Seq[[]byte], contentLength int64) (*BodyIter, error) {
	if source == nil {
		return nil, errors.Usagef("body source must not be nil")
	}

	if contentLength < 0 || contentLength > config.MaxLength {
		return nil, errors.Usagef(
			"need 0 <= content_length <= %d; got %d", int64(config.MaxLength), contentLength,
		)
	}

	return &BodyIter{
		source:        source,
		contentLength: contentLength,
	}, nil
}

func (*BodyIter) payload() {}

func (b *BodyIter) ContentLength() int64 {
	return b.contentLength
}

func (b *BodyIter) State() State {
	return b.state
}

// WriteTo writes everything the source produces into w. Producing more or less than
// the declared length is an error.
func (b *BodyIter) WriteTo(w io.Writer) (n int64, err error) {
	if b.state != Ready {
		return 0, errors.Usagef("body iterator is %s, expected ready", b.state)
	}

	b.state = Started
	var total int64

	for data := range b.source {
		total += int64(len(data))
		if total > b.contentLength {
			b.state = Error
			return n, errors.Usagef("exceeds content_length: %d > %d", total, b.contentLength)
		}

		written, err := w.Write(data)
		n += int64(written)
		if err != nil {
			b.state = Error
			return n, errors.Transport(err, "write body")
		}
	}

	if total != b.contentLength {
		b.state = Error
		return n, errors.Usagef("deceeds content_length: %d < %d", total, b.contentLength)
	}

	b.state = Consumed
	return n, nil
}

// ChunkedBodyIter is an outgoing chunked body produced by the source. The last produced
// chunk must be the only one with empty data.
type ChunkedBodyIter struct {
	source iter.Seq[Chunk]
	state  State
}

func NewChunkedBodyIter(source iter.Seq[Chunk]) (*ChunkedBodyIter, error) {
	if source == nil {
		return nil, errors.Usagef("body source must not be nil")
	}

	return &ChunkedBodyIter{source: source}, nil
}

func (*ChunkedBodyIter) payload() {}

func (c *ChunkedBodyIter) State() State {
	return c.state
}

// WriteTo encodes every chunk the source produces into w.
func (c *ChunkedBodyIter) WriteTo(w io.Writer) (n int64, err error) {
	if c.state != Ready {
		return 0, errors.Usagef("chunked body iterator is %s, expected ready", c.state)
	}

	c.state = Started
	var last bool

	for chunk := range c.source {
		if last {
			c.state = Error
			return n, errors.Usagef("additional chunk after empty chunk data")
		}

		last = len(chunk.Data) == 0
		written, err := writeChunk(w, chunk)
		n += written
		if err != nil {
			c.state = Error
			return n, err
		}
	}

	if !last {
		c.state = Error
		return n, errors.Usagef("final chunk data was not empty")
	}

	c.state = Consumed
	return n, nil
}

// Chunks is a convenience constructor of a ChunkedBodyIter source from plain data pieces.
// The terminating empty chunk is appended automatically.
func Chunks(pieces ...[]byte) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for _, piece := range pieces {
			if len(piece) == 0 {
				continue
			}

			if !yield(Chunk{Data: piece}) {
				return
			}
		}

		yield(Chunk{})
	}
}
