package virtual

import (
	"testing"

	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/headers"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/server"
	"github.com/stretchr/testify/require"
)

func respondWith(code status.Code) server.Handler {
	return server.HandlerFunc(func(*server.Session, *http.Request, *http.API) (*http.Response, error) {
		return http.NewResponse(code, nil), nil
	})
}

func newRequest(host string) *http.Request {
	request := &http.Request{Headers: make(headers.Headers)}
	if len(host) > 0 {
		request.Headers["host"] = host
	}

	return request
}

func serve(t *testing.T, r *Router, host string) status.Code {
	response, err := r.ServeRGI(nil, newRequest(host), http.DefaultAPI)
	require.NoError(t, err)
	return response.Status
}

func TestVirtualRouter(t *testing.T) {
	// handlers respond with different codes, so it's visible which one was chosen
	const (
		first  = status.OK
		second = status.Accepted
		def    = status.NoContent
	)

	t.Run("no hosts", func(t *testing.T) {
		r := New()
		require.Equal(t, status.MisdirectedRequest, serve(t, r, "localhost"))
		require.Equal(t, status.BadRequest, serve(t, r, ""))
	})

	t.Run("default handler", func(t *testing.T) {
		for _, r := range []*Router{New().Default(respondWith(def)), New().Host("0.0.0.0", respondWith(def))} {
			require.Equal(t, def, serve(t, r, "localhost"))
			require.Equal(t, def, serve(t, r, "127.0.0.1"))
			require.Equal(t, def, serve(t, r, ""))
		}
	})

	t.Run("multiple hosts", func(t *testing.T) {
		r := New().
			Host("example.com", respondWith(first)).
			Host("www.example.org:8080", respondWith(second))

		require.Equal(t, first, serve(t, r, "example.com"))
		require.Equal(t, first, serve(t, r, "www.example.com:80"))
		require.Equal(t, first, serve(t, r, "Example.COM"))
		require.Equal(t, second, serve(t, r, "example.org:8080"))
		require.Equal(t, status.MisdirectedRequest, serve(t, r, "example.org"))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("pure domain", func(t *testing.T) {
		require.Equal(t, "foo.example.com", Normalize("foo.example.com"))
	})

	t.Run("with default port", func(t *testing.T) {
		require.Equal(t, "foo.example.com", Normalize("foo.example.com:80"))
		require.Equal(t, "foo.example.com", Normalize("foo.example.com:443"))
	})

	t.Run("with different port", func(t *testing.T) {
		require.Equal(t, "foo.example.com:8080", Normalize("foo.example.com:8080"))
	})

	t.Run("with www prefix", func(t *testing.T) {
		require.Equal(t, "foo.example.com", Normalize("www.foo.example.com"))
	})

	t.Run("ip address", func(t *testing.T) {
		require.Equal(t, "1.1.1.1", Normalize("1.1.1.1:80"))
	})

	t.Run("trim port", func(t *testing.T) {
		require.Equal(t, "localhost", TrimPort("localhost:8080"))
		require.Equal(t, "localhost", TrimPort("localhost"))
	})
}
