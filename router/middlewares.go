package router

import (
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/server"
)

// Middleware wraps a handler call. It may either call next, or respond on its own.
type Middleware func(next server.Handler, s *server.Session, r *http.Request, api *http.API) (*http.Response, error)

// Chain makes a single handler out of the handler and middlewares. The first middleware
// is the outermost one.
func Chain(handler server.Handler, middlewares ...Middleware) server.Handler {
	if len(middlewares) == 0 {
		return handler
	}

	next := Chain(handler, middlewares[1:]...)
	mw := middlewares[0]

	return server.HandlerFunc(func(s *server.Session, r *http.Request, api *http.API) (*http.Response, error) {
		return mw(next, s, r, api)
	})
}
