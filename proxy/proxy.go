// Package proxy implements a reverse proxy handler. Every downstream connection gets its
// own upstream connection, opened on the first request.
package proxy

import (
	"github.com/indigo-web/rgi/client"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/server"
)

// DefaultKey is the session store key the upstream connection is kept under.
const DefaultKey = "conn"

var _ server.Handler = new(Proxy)

type Proxy struct {
	client *client.Client
	key    string
}

// New returns a proxy to the upstream described by the client. An empty key defaults
// to DefaultKey.
func New(upstream *client.Client, key string) *Proxy {
	if len(key) == 0 {
		key = DefaultKey
	}

	return &Proxy{
		client: upstream,
		key:    key,
	}
}

// ServeRGI forwards the unrouted part of the request upstream and returns the upstream
// response as is, so its body is streamed straight to the downstream connection. The
// host header is dropped, as the upstream client sets its own.
func (p *Proxy) ServeRGI(s *server.Session, r *http.Request, _ *http.API) (*http.Response, error) {
	conn, err := p.connection(s)
	if err != nil {
		return nil, err
	}

	hdrs := r.Headers.Clone()
	delete(hdrs, "host")

	response, err := conn.Request(r.Method, r.ProxyURI(), hdrs, r.Body)
	if err != nil {
		delete(s.Store, p.key)
		return nil, err
	}

	return response, nil
}

func (p *Proxy) connection(s *server.Session) (*client.Connection, error) {
	if conn, ok := s.Store[p.key].(*client.Connection); ok && !conn.Closed() {
		return conn, nil
	}

	conn, err := p.client.Connect()
	if err != nil {
		return nil, err
	}

	s.Store[p.key] = conn
	return conn, nil
}
