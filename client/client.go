package client

import (
	"context"
	"net"
	"strings"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/internal/grammar"
	"github.com/indigo-web/rgi/transport"
)

// Client is a descriptor of the server to connect to. It's safe to open connections from
// multiple goroutines, as long as the client isn't modified anymore.
type Client struct {
	network     string
	address     string
	cfg         config.Client
	baseHeaders headers.Headers
	onConnect   func(conn *Connection) bool
	dialer      net.Dialer
}

// New returns a client of the server at the address, which is either host:port or an
// absolute path to a unix socket.
func New(address string, cfg config.Client) (*Client, error) {
	c := &Client{
		network:     "tcp",
		address:     address,
		cfg:         cfg,
		baseHeaders: make(headers.Headers),
		dialer:      net.Dialer{Timeout: cfg.Timeout},
	}

	if strings.HasPrefix(address, "/") {
		c.network = "unix"
	} else if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, errors.Usagef("bad address: %q", address)
	}

	host := cfg.Host
	if len(host) == 0 && c.network == "tcp" {
		host = address
	}

	if len(host) > 0 && !cfg.OmitHost {
		if err := c.SetBaseHeader("host", host); err != nil {
			return nil, err
		}
	}

	if len(cfg.Authorization) > 0 {
		if err := c.SetBaseHeader("authorization", cfg.Authorization); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Network returns either tcp or unix.
func (c *Client) Network() string {
	return c.network
}

func (c *Client) Address() string {
	return c.address
}

// OnConnect sets the callback invoked on every new connection before it's returned. If
// the callback returns false, the connection is closed and Connect fails.
func (c *Client) OnConnect(cb func(conn *Connection) bool) *Client {
	c.onConnect = cb
	return c
}

// SetBaseHeader sets a header sent with every request of every new connection. An empty
// value removes the header.
func (c *Client) SetBaseHeader(key, value string) error {
	if len(value) == 0 {
		delete(c.baseHeaders, key)
		return nil
	}

	if len(key) == 0 || len(key) > config.MaxHeaderKeySize || !grammar.Key.Contains(key) {
		return errors.Usagef("bad header name: %q", key)
	}

	if !grammar.Outgoing.Contains(value) {
		return errors.Usagef("bad header value: %s: %q", key, value)
	}

	c.baseHeaders[key] = value
	return nil
}

// BaseHeaders returns a copy of the base headers.
func (c *Client) BaseHeaders() headers.Headers {
	return c.baseHeaders.Clone()
}

func (c *Client) Connect() (*Connection, error) {
	return c.ConnectContext(context.Background())
}

// ConnectContext dials a new connection. The context bounds the dialing only.
func (c *Client) ConnectContext(ctx context.Context) (*Connection, error) {
	conn, err := c.dialer.DialContext(ctx, c.network, c.address)
	if err != nil {
		return nil, errors.Transport(err, "connect")
	}

	return c.Wrap(conn)
}

// Wrap turns an already established connection into a Connection. It's the way to speak
// over TLS or any other custom stream.
func (c *Client) Wrap(conn net.Conn) (*Connection, error) {
	connection := &Connection{
		conn:        transport.NewConn(conn, c.cfg.Timeout),
		baseHeaders: c.baseHeaders.Clone(),
	}

	if c.onConnect != nil && !c.onConnect(connection) {
		_ = connection.Close()
		return nil, errors.Applicationf("on_connect() did not return true")
	}

	return connection, nil
}
