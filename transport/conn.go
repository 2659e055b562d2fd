package transport

import (
	"io"
	"net"
	"time"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/internal/buffer"
	"github.com/indigo-web/rgi/internal/protocol/http1"
	"github.com/indigo-web/rgi/internal/timer"
)

var crlfcrlf = []byte("\r\n\r\n")

var (
	_ http.Reader = new(Conn)
	_ io.Writer   = new(Conn)
	_ io.Closer   = new(Conn)
)

// Conn is the buffered socket wrapper both the server and the client are built on. Reads
// and writes go through separate fixed-size buffers, every socket operation gets its own
// deadline. Conn is not safe for concurrent use.
type Conn struct {
	conn     net.Conn
	timeout  time.Duration
	reader   *buffer.Reader
	wbuf     *buffer.IOBuf
	preamble []byte
	closed   bool
}

func NewConn(conn net.Conn, timeout time.Duration) *Conn {
	c := &Conn{
		conn:     conn,
		timeout:  timeout,
		wbuf:     buffer.New(config.BufferSize),
		preamble: make([]byte, 0, 512),
	}
	c.reader = buffer.NewReader(socketReader{c}, buffer.New(config.BufferSize))

	return c
}

// Unwrap returns the underlying connection.
func (c *Conn) Unwrap() net.Conn {
	return c.conn
}

// ReadUntil returns data up to the delimiter, which must be found within first maxSize
// bytes. io.EOF is returned if the peer closed the connection and nothing is buffered.
func (c *Conn) ReadUntil(maxSize int, delim []byte) ([]byte, error) {
	return c.reader.ReadUntil(maxSize, delim)
}

func (c *Conn) ReadLine(maxSize int) ([]byte, error) {
	return c.reader.ReadLine(maxSize)
}

func (c *Conn) ReadInto(dst []byte) error {
	return c.reader.ReadInto(dst)
}

// ReadRequest reads the request preamble and attaches the body, which is read from the
// connection lazily. If the peer closes the connection between requests or sends an
// empty preamble, errors.ErrEmptyPreamble is returned.
func (c *Conn) ReadRequest() (*http.Request, error) {
	preamble, err := c.readPreamble()
	if err != nil {
		return nil, err
	}

	if len(preamble) == 0 {
		return nil, errors.ErrEmptyPreamble
	}

	// the preamble is copied as the buffer is going to be reused by the body
	return http1.ParseRequest(string(preamble), c)
}

// ReadResponse reads the response to a request with the given method.
func (c *Conn) ReadResponse(m method.Method) (*http.Response, error) {
	preamble, err := c.readPreamble()
	if err == errors.ErrEmptyPreamble {
		return nil, errors.Transportf("connection closed before response")
	}
	if err != nil {
		return nil, err
	}

	return http1.ParseResponse(m, string(preamble), c)
}

func (c *Conn) readPreamble() ([]byte, error) {
	if c.closed {
		return nil, errors.ErrConnectionClosed
	}

	preamble, err := c.reader.ReadUntil(config.BufferSize, crlfcrlf)
	if err == io.EOF {
		return nil, errors.ErrEmptyPreamble
	}

	return preamble, err
}

// WriteRequest renders the request and sends it along with the body. The passed headers
// aren't modified.
func (c *Conn) WriteRequest(m method.Method, uri string, hdrs headers.Headers, body http.Payload) error {
	hdrs = hdrs.Clone()
	if err := http1.SetOutputHeaders(hdrs, body); err != nil {
		return err
	}

	preamble, err := http1.AppendRequest(c.preamble[:0], m, uri, hdrs)
	if err != nil {
		return err
	}

	return c.writeMessage(preamble, body)
}

// WriteResponse renders the response and sends it along with the body.
func (c *Conn) WriteResponse(code status.Code, reason string, hdrs headers.Headers, body http.Payload) error {
	hdrs = hdrs.Clone()
	if err := http1.SetOutputHeaders(hdrs, body); err != nil {
		return err
	}

	preamble, err := http1.AppendResponse(c.preamble[:0], code, reason, hdrs)
	if err != nil {
		return err
	}

	return c.writeMessage(preamble, body)
}

func (c *Conn) writeMessage(preamble []byte, body http.Payload) error {
	c.preamble = preamble[:0]

	if _, err := c.Write(preamble); err != nil {
		return err
	}

	if err := c.writeBody(body); err != nil {
		return err
	}

	return c.Flush()
}

func (c *Conn) writeBody(body http.Payload) error {
	switch b := body.(type) {
	case nil:
		return nil
	case http.Bytes:
		_, err := c.Write(b)
		return err
	case io.WriterTo:
		_, err := b.WriteTo(c)
		return err
	default:
		return errors.Usagef("bad body type: %T", body)
	}
}

// Write coalesces small writes in the buffer. Data not fitting into it is sent straight
// away, after the buffered data is flushed.
func (c *Conn) Write(p []byte) (n int, err error) {
	if c.closed {
		return 0, errors.ErrConnectionClosed
	}

	if c.wbuf.Append(p) {
		return len(p), nil
	}

	if err = c.Flush(); err != nil {
		return 0, err
	}

	if c.wbuf.Append(p) {
		return len(p), nil
	}

	return c.write(p)
}

// Flush sends everything buffered by now.
func (c *Conn) Flush() error {
	if c.wbuf.Len() == 0 {
		return nil
	}

	_, err := c.write(c.wbuf.Preview())
	c.wbuf.Clear()

	return err
}

func (c *Conn) write(p []byte) (n int, err error) {
	if err = c.conn.SetWriteDeadline(timer.Deadline(c.timeout)); err != nil {
		return 0, errors.Transport(err, "set write deadline")
	}

	// net.Conn implementations are obligated to either write everything or fail
	n, err = c.conn.Write(p)
	return n, errors.Transport(err, "write")
}

// Close closes the underlying connection. Repeated calls are no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true
	return c.conn.Close()
}

func (c *Conn) Closed() bool {
	return c.closed
}

// socketReader applies the read deadline before every read.
type socketReader struct {
	c *Conn
}

func (s socketReader) Read(p []byte) (n int, err error) {
	if s.c.closed {
		return 0, errors.ErrConnectionClosed
	}

	if err = s.c.conn.SetReadDeadline(timer.Deadline(s.c.timeout)); err != nil {
		return 0, err
	}

	return s.c.conn.Read(p)
}
