package client

import (
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/transport"
)

// Connection performs exchanges one at a time. The body of a response must be consumed
// before the next request. Any error during an exchange closes the connection. The
// Connection isn't safe for concurrent use.
type Connection struct {
	conn         *transport.Conn
	baseHeaders  headers.Headers
	responseBody http.Payload
}

// Request sends the request and reads the response preamble. Only PUT and POST requests
// may carry a body. Base headers are added to the passed ones, which aren't modified.
func (c *Connection) Request(
	m method.Method, uri string, hdrs headers.Headers, body http.Payload,
) (*http.Response, error) {
	if c.conn.Closed() {
		return nil, errors.ErrConnectionClosed
	}

	response, err := c.request(m, uri, hdrs, body)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return response, nil
}

func (c *Connection) request(
	m method.Method, uri string, hdrs headers.Headers, body http.Payload,
) (*http.Response, error) {
	if body != nil && !m.AllowsBody() {
		return nil, errors.Usagef("when method is %s, body must be nil; got %T", m, body)
	}

	if state := http.StateOf(c.responseBody); state != http.Consumed {
		return nil, errors.Usagef("response body not consumed: %T is %s", c.responseBody, state)
	}

	hdrs = hdrs.Clone()
	for _, key := range c.baseHeaders.SortedKeys() {
		if err := hdrs.SetDefault(key, c.baseHeaders[key]); err != nil {
			return nil, err
		}
	}

	if err := c.conn.WriteRequest(m, uri, hdrs, body); err != nil {
		return nil, err
	}

	response, err := c.conn.ReadResponse(m)
	if err != nil {
		return nil, err
	}

	c.responseBody = response.Body
	return response, nil
}

func (c *Connection) Put(uri string, hdrs headers.Headers, body http.Payload) (*http.Response, error) {
	return c.Request(method.PUT, uri, hdrs, body)
}

func (c *Connection) Post(uri string, hdrs headers.Headers, body http.Payload) (*http.Response, error) {
	return c.Request(method.POST, uri, hdrs, body)
}

func (c *Connection) Get(uri string, hdrs headers.Headers) (*http.Response, error) {
	return c.Request(method.GET, uri, hdrs, nil)
}

func (c *Connection) Head(uri string, hdrs headers.Headers) (*http.Response, error) {
	return c.Request(method.HEAD, uri, hdrs, nil)
}

func (c *Connection) Delete(uri string, hdrs headers.Headers) (*http.Response, error) {
	return c.Request(method.DELETE, uri, hdrs, nil)
}

// GetRange requests bytes in range [start, stop).
func (c *Connection) GetRange(uri string, hdrs headers.Headers, start, stop int64) (*http.Response, error) {
	r, err := headers.NewRange(start, stop)
	if err != nil {
		return nil, err
	}

	hdrs = hdrs.Clone()
	if err = hdrs.SetDefault("range", r.String()); err != nil {
		return nil, err
	}

	return c.Request(method.GET, uri, hdrs, nil)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) Closed() bool {
	return c.conn.Closed()
}
