package buffer

import (
	"bytes"
	"io"

	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/utils/uf"
)

var crlf = []byte("\r\n")

// Reader serves delimiter-searching and exact-size reads from an arbitrary io.Reader,
// never consuming the source past what was asked for, except for the read-ahead, which
// stays in the buffer.
type Reader struct {
	src io.Reader
	buf *IOBuf
}

func NewReader(src io.Reader, buf *IOBuf) *Reader {
	return &Reader{
		src: src,
		buf: buf,
	}
}

// Buffered returns the read-ahead.
func (r *Reader) Buffered() int {
	return r.buf.Len()
}

// fill reads once from the source into the free space of the buffer.
func (r *Reader) fill() (n int, err error) {
	free := r.buf.Free()
	if len(free) == 0 {
		return 0, nil
	}

	n, err = r.src.Read(free)
	r.buf.Extend(n)

	return n, err
}

// ReadUntil returns data until the delimiter, consuming the delimiter too. The result
// stays valid until the next read. If the delimiter isn't found within first maxSize bytes,
// a grammar error is returned. If the source is exhausted and nothing is buffered, io.EOF
// is returned.
func (r *Reader) ReadUntil(maxSize int, delim []byte) ([]byte, error) {
	if maxSize < len(delim) || maxSize > r.buf.Cap() {
		return nil, errors.Usagef("need %d <= size <= %d; got %d", len(delim), r.buf.Cap(), maxSize)
	}

	searched := 0

	for {
		window := r.buf.Peek(maxSize)
		if index := bytes.Index(window[searched:], delim); index != -1 {
			data := r.buf.Drain(searched + index + len(delim))
			return data[:len(data)-len(delim)], nil
		}

		if len(window) >= maxSize {
			return nil, errors.Grammarf("%q not found in %q...", delim, prefix(window))
		}

		// the delimiter might have been split between two reads
		searched = max(0, len(window)-len(delim)+1)

		if len(r.buf.Free()) < maxSize-len(window) {
			r.buf.Compact()
		}

		n, err := r.fill()
		if n > 0 {
			continue
		}

		switch {
		case err == io.EOF && r.buf.Len() == 0:
			return nil, io.EOF
		case err == io.EOF:
			return nil, errors.Grammarf("%q not found in %q...", delim, prefix(r.buf.Preview()))
		case err != nil:
			return nil, errors.Transport(err, "read")
		}
	}
}

// ReadLine reads a CRLF-terminated line, which must fit into maxSize including the CRLF.
// Unlike ReadUntil, premature end of the stream is an error.
func (r *Reader) ReadLine(maxSize int) ([]byte, error) {
	line, err := r.ReadUntil(maxSize, crlf)
	if err == io.EOF {
		return nil, errors.Transportf("unexpected EOF while reading line")
	}

	return line, err
}

// ReadInto fills dst entirely. The buffered data is served first, the rest is read from
// the source directly.
func (r *Reader) ReadInto(dst []byte) error {
	n := copy(dst, r.buf.Drain(len(dst)))

	for n < len(dst) {
		m, err := r.src.Read(dst[n:])
		n += m

		if err != nil {
			if n == len(dst) {
				break
			}

			if err == io.EOF {
				return errors.Transportf("expected to read %d bytes, but received %d", len(dst), n)
			}

			return errors.Transport(err, "read")
		}
	}

	return nil
}

func prefix(data []byte) string {
	const maxPrefix = 32

	if len(data) > maxPrefix {
		data = data[:maxPrefix]
	}

	return uf.B2S(data)
}
