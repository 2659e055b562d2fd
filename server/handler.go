package server

import (
	"net"

	"github.com/indigo-web/rgi/http"
)

// Handler is an application served by the server. The request body must be consumed
// by the moment the response is returned. A returned error ends the connection without
// any response written.
type Handler interface {
	ServeRGI(s *Session, r *http.Request, api *http.API) (*http.Response, error)
}

// HandlerFunc adapts a plain function to be a Handler.
type HandlerFunc func(s *Session, r *http.Request, api *http.API) (*http.Response, error)

func (f HandlerFunc) ServeRGI(s *Session, r *http.Request, api *http.API) (*http.Response, error) {
	return f(s, r, api)
}

// ConnectHandler is optionally implemented by handlers willing to inspect connections
// before any request is read. Returning false drops the connection.
type ConnectHandler interface {
	OnConnect(s *Session, conn net.Conn) bool
}
