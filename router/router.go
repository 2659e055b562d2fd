// Package router dispatches requests to handlers by their path, one segment per level
// of nested routes.
package router

import (
	"strings"

	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/internal/grammar"
	"github.com/indigo-web/rgi/server"
)

const (
	// MaxDepth limits how deep the routes may be nested.
	MaxDepth = 10
	// Index is the key matching an exhausted path. It can never be a path segment.
	Index = "/"
)

// Routes maps path segments onto either a server.Handler or nested Routes.
type Routes map[string]any

var _ server.Handler = new(Router)

type Router struct {
	routes Routes
}

// New validates the routes and returns the router over them. The routes must not be
// modified afterward.
func New(routes Routes) (*Router, error) {
	if err := check(routes, 0); err != nil {
		return nil, err
	}

	return &Router{routes: routes}, nil
}

func check(routes Routes, depth int) error {
	if depth >= MaxDepth {
		return errors.Usagef("router: max routes depth %d exceeded", MaxDepth)
	}

	if routes == nil {
		return errors.Usagef("router: routes must not be nil")
	}

	for key, value := range routes {
		if key != Index && (strings.Contains(key, "/") || !grammar.Path.Contains(key)) {
			return errors.Usagef("router: bad path segment: %q", key)
		}

		switch v := value.(type) {
		case Routes:
			if err := check(v, depth+1); err != nil {
				return err
			}
		case server.Handler:
		default:
			return errors.Usagef("router: routes[%q]: not a handler: %T", key, value)
		}
	}

	return nil
}

// ServeRGI shifts the path segment by segment, descending the routes. If no route
// matches, 410 Gone is returned.
func (r *Router) ServeRGI(s *server.Session, req *http.Request, api *http.API) (*http.Response, error) {
	routes := r.routes

	for range MaxDepth {
		key, ok := req.ShiftPath()
		if !ok {
			key = Index
		}

		switch route := routes[key].(type) {
		case Routes:
			routes = route
		case server.Handler:
			return route.ServeRGI(s, req, api)
		default:
			return gone(), nil
		}
	}

	return nil, errors.Usagef("router: max routes depth %d exceeded", MaxDepth)
}

func gone() *http.Response {
	return &http.Response{
		Status:  status.Gone,
		Reason:  status.Text(status.Gone),
		Headers: make(headers.Headers),
	}
}
