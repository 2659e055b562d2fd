package dummy

import (
	"io"
	"net"
	"time"
)

var _ net.Conn = new(Conn)

// Conn returns the data it was initialised with piece by piece on every read. Once the
// pieces are exhausted, io.EOF is returned, unless the conn is looped. It also journals
// all the written data, making it thereby a universal mock suitable for most of the tests.
type Conn struct {
	data    [][]byte
	pointer int
	pending []byte
	written []byte
	readErr error
	nop     bool
	looped  bool
	closed  bool
	remote  net.Addr
}

func NewConn(data ...[]byte) *Conn {
	return &Conn{
		data: data,
	}
}

// Looped makes the conn start from the first piece again after the last one.
func (c *Conn) Looped() *Conn {
	c.looped = true
	return c
}

// Nop disables write journaling.
func (c *Conn) Nop() *Conn {
	c.nop = true
	return c
}

// FailWith makes reads fail with the error once the data is exhausted.
func (c *Conn) FailWith(err error) *Conn {
	c.readErr = err
	return c
}

// Remote sets the address returned by RemoteAddr.
func (c *Conn) Remote(addr net.Addr) *Conn {
	c.remote = addr
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if len(c.pending) == 0 {
		if c.pointer >= len(c.data) {
			if !c.looped || len(c.data) == 0 {
				if c.readErr != nil {
					return 0, c.readErr
				}

				return 0, io.EOF
			}

			c.pointer = 0
		}

		c.pending = c.data[c.pointer]
		c.pointer++
	}

	n = copy(b, c.pending)
	c.pending = c.pending[n:]

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.closed {
		return 0, net.ErrClosed
	}

	if !c.nop {
		c.written = append(c.written, b...)
	}

	return len(b), nil
}

// Written returns everything written so far.
func (c *Conn) Written() []byte {
	return c.written
}

func (c *Conn) Close() error {
	c.closed = true
	return nil
}

func (c *Conn) Closed() bool {
	return c.closed
}

func (c *Conn) LocalAddr() net.Addr {
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

// SinkholeWriter just journals everything written.
type SinkholeWriter struct {
	Data []byte
}

func NewSinkholeWriter() *SinkholeWriter {
	return new(SinkholeWriter)
}

func (s *SinkholeWriter) Write(b []byte) (int, error) {
	s.Data = append(s.Data, b...)
	return len(b), nil
}
