package http

import (
	"bytes"
	"io"
	"iter"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/internal/protocol/chunked"
	"github.com/valyala/bytebufferpool"
)

// Extension is an optional key=value pair attached to a chunk.
type Extension = chunked.Extension

// Chunk is a single chunk of a chunked body. Empty data marks the last chunk.
type Chunk struct {
	Ext  *Extension
	Data []byte
}

var crlf = []byte("\r\n")

// ChunkedBody is a body in the chunked transfer encoding, read from the source.
type ChunkedBody struct {
	src   Reader
	state State
}

func NewChunkedBody(src Reader) (*ChunkedBody, error) {
	if src == nil {
		return nil, errors.Usagef("body source must not be nil")
	}

	return &ChunkedBody{src: src}, nil
}

func (*ChunkedBody) payload() {}

func (c *ChunkedBody) State() State {
	return c.state
}

func (c *ChunkedBody) start() error {
	switch c.state {
	case Consumed:
		return errors.Usagef("chunked body is already consumed")
	case Error:
		return errors.Usagef("chunked body previously failed, cannot be used")
	}

	c.state = Started
	return nil
}

func (c *ChunkedBody) fail(err error) error {
	c.state = Error
	abandon(c.src)
	return err
}

func (c *ChunkedBody) readChunk() (Chunk, error) {
	line, err := c.src.ReadLine(config.MaxLineSize)
	if err != nil {
		return Chunk{}, c.fail(err)
	}

	size, ext, err := chunked.ParseLine(string(line))
	if err != nil {
		return Chunk{}, c.fail(err)
	}

	data := make([]byte, size+len(crlf))
	if err = c.src.ReadInto(data); err != nil {
		return Chunk{}, c.fail(err)
	}

	if !bytes.Equal(data[size:], crlf) {
		return Chunk{}, c.fail(errors.Grammarf("bad chunk data termination: %q", data[size:]))
	}

	if size == 0 {
		c.state = Consumed
	}

	return Chunk{Ext: ext, Data: data[:size]}, nil
}

// ReadChunk reads the next chunk. The chunk with empty data is the last one.
func (c *ChunkedBody) ReadChunk() (Chunk, error) {
	if err := c.start(); err != nil {
		return Chunk{}, err
	}

	return c.readChunk()
}

// ReadAll reads and concatenates all the chunks. The total must not exceed config.MaxIOSize.
func (c *ChunkedBody) ReadAll() ([]byte, error) {
	if err := c.start(); err != nil {
		return nil, err
	}

	buff := bytebufferpool.Get()
	defer bytebufferpool.Put(buff)

	for {
		chunk, err := c.readChunk()
		if err != nil {
			return nil, err
		}

		if buff.Len()+len(chunk.Data) > config.MaxIOSize {
			return nil, c.fail(errors.Grammarf(
				"chunked body too large: %d > %d", buff.Len()+len(chunk.Data), config.MaxIOSize,
			))
		}

		_, _ = buff.Write(chunk.Data)

		if len(chunk.Data) == 0 {
			return append([]byte(nil), buff.B...), nil
		}
	}
}

// Iter yields chunks one by one, including the last empty one.
func (c *ChunkedBody) Iter() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		if err := c.start(); err != nil {
			yield(Chunk{}, err)
			return
		}

		for c.state != Consumed {
			chunk, err := c.readChunk()
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// WriteTo re-encodes the body chunk by chunk into w, preserving extensions. The body
// must not be read from before.
func (c *ChunkedBody) WriteTo(w io.Writer) (n int64, err error) {
	if c.state != Ready {
		return 0, errors.Usagef("chunked body is %s, expected ready", c.state)
	}

	for chunk, readErr := range c.Iter() {
		if readErr != nil {
			return n, readErr
		}

		written, writeErr := writeChunk(w, chunk)
		n += written
		if writeErr != nil {
			return n, c.fail(writeErr)
		}
	}

	return n, nil
}

func writeChunk(w io.Writer, chunk Chunk) (n int64, err error) {
	var lineBuff [32]byte
	line, err := chunked.AppendLine(lineBuff[:0], len(chunk.Data), chunk.Ext)
	if err != nil {
		return 0, err
	}

	for _, piece := range [][]byte{line, chunk.Data, crlf} {
		if len(piece) == 0 {
			continue
		}

		written, err := w.Write(piece)
		n += int64(written)
		if err != nil {
			return n, errors.Transport(err, "write chunk")
		}
	}

	return n, nil
}
