package http

import (
	"io"
	"iter"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
)

// Body is a body of a fixed length, read from the source. Exactly ContentLength bytes
// are read, the source is never touched past them.
type Body struct {
	src                      Reader
	contentLength, remaining int64
	state                    State
}

func NewBody(src Reader, contentLength int64) (*Body, error) {
	if src == nil {
		return nil, errors.Usagef("body source must not be nil")
	}

	if contentLength < 0 || contentLength > config.MaxLength {
		return nil, errors.Usagef(
			"need 0 <= content_length <= %d; got %d", int64(config.MaxLength), contentLength,
		)
	}

	return &Body{
		src:           src,
		contentLength: contentLength,
		remaining:     contentLength,
	}, nil
}

func (*Body) payload() {}

func (b *Body) ContentLength() int64 {
	return b.contentLength
}

// Remaining returns how many bytes are left unread.
func (b *Body) Remaining() int64 {
	return b.remaining
}

func (b *Body) State() State {
	return b.state
}

func (b *Body) start() error {
	switch b.state {
	case Consumed:
		return errors.Usagef("body is already consumed")
	case Error:
		return errors.Usagef("body previously failed, cannot be used")
	}

	b.state = Started
	return nil
}

func (b *Body) fail(err error) error {
	b.state = Error
	abandon(b.src)
	return err
}

func (b *Body) readInto(dst []byte) error {
	if err := b.src.ReadInto(dst); err != nil {
		return b.fail(err)
	}

	b.remaining -= int64(len(dst))
	if b.remaining == 0 {
		b.state = Consumed
	}

	return nil
}

// Read implements the io.Reader interface. A single call never reads more than
// config.MaxIOSize bytes.
func (b *Body) Read(p []byte) (n int, err error) {
	if b.state == Consumed {
		return 0, io.EOF
	}

	if err = b.start(); err != nil {
		return 0, err
	}

	if b.remaining == 0 {
		b.state = Consumed
		return 0, io.EOF
	}

	n = int(min(int64(len(p)), b.remaining, config.MaxIOSize))
	if err = b.readInto(p[:n]); err != nil {
		return 0, err
	}

	return n, nil
}

// ReadAll reads the whole body at once. Bodies longer than config.MaxIOSize must be
// streamed instead.
func (b *Body) ReadAll() ([]byte, error) {
	if err := b.start(); err != nil {
		return nil, err
	}

	if b.remaining > config.MaxIOSize {
		return nil, errors.Usagef("max read size exceeded: %d > %d", b.remaining, config.MaxIOSize)
	}

	data := make([]byte, b.remaining)
	if err := b.readInto(data); err != nil {
		return nil, err
	}

	b.state = Consumed
	return data, nil
}

// Iter yields the body in pieces of at most config.IOSize bytes. A piece stays valid
// only until the next iteration.
func (b *Body) Iter() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		if err := b.start(); err != nil {
			yield(nil, err)
			return
		}

		if b.remaining == 0 {
			b.state = Consumed
			return
		}

		buff := make([]byte, min(b.remaining, config.IOSize))

		for b.remaining > 0 {
			piece := buff[:min(b.remaining, int64(len(buff)))]
			if err := b.readInto(piece); err != nil {
				yield(nil, err)
				return
			}

			if !yield(piece, nil) {
				return
			}
		}
	}
}

// WriteTo implements the io.WriterTo interface, streaming the body into w. Only an
// untouched body can be written, as otherwise it wouldn't match its content-length.
func (b *Body) WriteTo(w io.Writer) (n int64, err error) {
	if b.state != Ready {
		return 0, errors.Usagef("body is %s, expected ready", b.state)
	}

	for piece, readErr := range b.Iter() {
		if readErr != nil {
			return n, readErr
		}

		written, writeErr := w.Write(piece)
		n += int64(written)
		if writeErr != nil {
			return n, b.fail(errors.Transport(writeErr, "write body"))
		}
	}

	return n, nil
}
