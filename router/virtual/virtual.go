// Package virtual dispatches requests to handlers by the host header.
package virtual

import (
	"strings"

	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/server"
)

var _ server.Handler = new(Router)

type Router struct {
	hosts    map[string]server.Handler
	fallback server.Handler
}

// New returns a new instance of the virtual Router
func New() *Router {
	return &Router{
		hosts: make(map[string]server.Handler),
	}
}

// Host adds a handler of the host. If 0.0.0.0 is passed, the handler is set as the
// default one.
func (r *Router) Host(host string, handler server.Handler) *Router {
	host = Normalize(host)
	if TrimPort(host) == "0.0.0.0" {
		return r.Default(handler)
	}

	r.hosts[host] = handler
	return r
}

// Default sets the handler of requests not matching any host, including requests with
// no host header at all.
func (r *Router) Default(handler server.Handler) *Router {
	r.fallback = handler
	return r
}

// ServeRGI responds with 421 Misdirected Request if no handler matched, or with
// 400 Bad Request if the host header is missing and there's no default handler.
func (r *Router) ServeRGI(s *server.Session, req *http.Request, api *http.API) (*http.Response, error) {
	host, found := req.Headers["host"]
	if handler, ok := r.hosts[Normalize(host)]; found && ok {
		return handler.ServeRGI(s, req, api)
	}

	if r.fallback != nil {
		return r.fallback.ServeRGI(s, req, api)
	}

	if !found {
		return respond(status.BadRequest), nil
	}

	return respond(status.MisdirectedRequest), nil
}

func respond(code status.Code) *http.Response {
	return &http.Response{
		Status:  code,
		Reason:  status.Text(code),
		Headers: make(headers.Headers),
	}
}

// Normalize lower-cases the host, strips the www. prefix and the default ports.
func Normalize(host string) string {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))

	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == '.' {
			break
		} else if host[i] == ':' {
			switch port := host[i+1:]; port {
			case "80", "443":
				// trim only default ports. Non-default must always be presented
				host = host[:i]
			}

			break
		}
	}

	return host
}

func TrimPort(host string) string {
	if colon := strings.IndexByte(host, ':'); colon != -1 {
		return host[:colon]
	}

	return host
}
