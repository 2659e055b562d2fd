package server

import (
	"bytes"
	"net"
	"syscall"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http"
	"github.com/indigo-web/rgi/http/method"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/transport"
	"github.com/indigo-web/rgi/transport/dummy"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, data string, maxRequests int, handler Handler) (*Session, *dummy.Conn, error) {
	client := dummy.NewConn([]byte(data))
	session, err := NewSession(nil, nil, maxRequests)
	require.NoError(t, err)

	return session, client, Serve(transport.NewConn(client, time.Second), session, handler)
}

// respondWith returns a handler responding with the codes one by one and counting calls.
func respondWith(calls *int, codes ...status.Code) Handler {
	return HandlerFunc(func(_ *Session, r *http.Request, _ *http.API) (*http.Response, error) {
		code := codes[*calls%len(codes)]
		*calls++
		return http.NewResponse(code, http.Bytes(r.URI)), nil
	})
}

func TestServe(t *testing.T) {
	const (
		getFoo = "GET /foo HTTP/1.1\r\n\r\n"
		getBar = "GET /bar HTTP/1.1\r\n\r\n"
		getBaz = "GET /baz HTTP/1.1\r\n\r\n"
	)

	t.Run("max requests", func(t *testing.T) {
		var calls int
		session, client, err := serve(t, getFoo+getBar+getBaz, 2, respondWith(&calls, status.OK))
		require.NoError(t, err)
		require.Equal(t, 2, calls)
		require.Equal(t, 2, session.Requests())
		require.True(t, session.Closed())
		require.Equal(t, "max_requests", session.Message())
		require.Equal(t,
			"HTTP/1.1 200 OK\r\ncontent-length: 4\r\n\r\n/foo"+
				"HTTP/1.1 200 OK\r\ncontent-length: 4\r\n\r\n/bar",
			string(client.Written()),
		)
	})

	t.Run("non-fatal status", func(t *testing.T) {
		var calls int
		session, _, err := serve(t, getFoo+getBar, 10, respondWith(&calls, status.NotFound, status.OK))
		require.Equal(t, errors.ErrEmptyPreamble, err)
		require.Equal(t, 2, calls)
		require.Equal(t, 2, session.Requests())
	})

	t.Run("fatal status", func(t *testing.T) {
		var calls int
		session, client, err := serve(t, getFoo+getBar, 10, respondWith(&calls, status.InternalServerError))
		require.NoError(t, err)
		require.Equal(t, 1, calls)
		require.Equal(t, 1, session.Requests())
		require.Equal(t, "500 Internal Server Error", session.Message())
		require.True(t, strings.HasPrefix(string(client.Written()), "HTTP/1.1 500 Internal Server Error\r\n"))
	})

	t.Run("consumed body", func(t *testing.T) {
		handler := HandlerFunc(func(_ *Session, r *http.Request, _ *http.API) (*http.Response, error) {
			data, err := r.Body.(*http.Body).ReadAll()
			if err != nil {
				return nil, err
			}

			return http.NewResponse(status.OK, http.Bytes(bytes.ToUpper(data))), nil
		})

		session, client, err := serve(t, "PUT /x HTTP/1.1\r\ncontent-length: 5\r\n\r\nhello", 1, handler)
		require.NoError(t, err)
		require.Equal(t, 1, session.Requests())
		require.Equal(t, "HTTP/1.1 200 OK\r\ncontent-length: 5\r\n\r\nHELLO", string(client.Written()))
	})

	t.Run("unconsumed body", func(t *testing.T) {
		var calls int
		session, client, err := serve(
			t, "PUT /x HTTP/1.1\r\ncontent-length: 5\r\n\r\nhello", 10, respondWith(&calls, status.OK),
		)
		require.ErrorIs(t, err, errors.ErrApplication)
		require.Empty(t, client.Written())
		require.Zero(t, session.Requests())
		require.True(t, session.Closed())
	})

	t.Run("HEAD with body", func(t *testing.T) {
		var calls int
		_, client, err := serve(t, "HEAD / HTTP/1.1\r\n\r\n", 10, respondWith(&calls, status.OK))
		require.ErrorIs(t, err, errors.ErrApplication)
		require.Empty(t, client.Written())
	})

	t.Run("HEAD", func(t *testing.T) {
		handler := HandlerFunc(func(_ *Session, r *http.Request, _ *http.API) (*http.Response, error) {
			require.Equal(t, method.HEAD, r.Method)
			return http.NewResponse(status.OK, nil).Header("content-length", "11"), nil
		})

		_, client, err := serve(t, "HEAD / HTTP/1.1\r\n\r\n", 1, handler)
		require.NoError(t, err)
		require.Equal(t, "HTTP/1.1 200 OK\r\ncontent-length: 11\r\n\r\n", string(client.Written()))
	})

	t.Run("status out of range", func(t *testing.T) {
		var calls int
		_, _, err := serve(t, getFoo, 10, respondWith(&calls, 600))
		require.ErrorIs(t, err, errors.ErrApplication)
	})

	t.Run("nil response", func(t *testing.T) {
		handler := HandlerFunc(func(*Session, *http.Request, *http.API) (*http.Response, error) {
			return nil, nil
		})

		_, _, err := serve(t, getFoo, 10, handler)
		require.ErrorIs(t, err, errors.ErrApplication)
	})

	t.Run("handler error", func(t *testing.T) {
		handler := HandlerFunc(func(*Session, *http.Request, *http.API) (*http.Response, error) {
			return nil, errors.Applicationf("something went wrong")
		})

		session, client, err := serve(t, getFoo, 10, handler)
		require.EqualError(t, err, "something went wrong")
		require.Equal(t, "something went wrong", session.Message())
		require.Empty(t, client.Written())
	})

	t.Run("bad request", func(t *testing.T) {
		var calls int
		_, _, err := serve(t, "GET //foo HTTP/1.1\r\n\r\n", 10, respondWith(&calls, status.OK))
		require.ErrorIs(t, err, errors.ErrGrammar)
		require.Zero(t, calls)
	})

	t.Run("empty preamble", func(t *testing.T) {
		var calls int
		_, _, err := serve(t, "", 10, respondWith(&calls, status.OK))
		require.Equal(t, errors.ErrEmptyPreamble, err)
		require.EqualError(t, err, "connection closed cleanly before request")

		_, client, err := serve(t, "\r\n\r\n", 10, respondWith(&calls, status.OK))
		require.Equal(t, errors.ErrEmptyPreamble, err)
		require.Zero(t, calls)
		require.Empty(t, client.Written())
	})

	t.Run("nil body pointer", func(t *testing.T) {
		handler := HandlerFunc(func(*Session, *http.Request, *http.API) (*http.Response, error) {
			return http.NewResponse(status.OK, (*http.Body)(nil)), nil
		})

		session, client, err := serve(t, getFoo, 10, handler)
		require.ErrorIs(t, err, errors.ErrUsage)
		require.True(t, session.Closed())
		require.Empty(t, client.Written())
	})

	t.Run("reused session", func(t *testing.T) {
		var calls int
		session, err := NewSession(nil, nil, 10)
		require.NoError(t, err)
		session.ResponseComplete(status.OK, "OK")
		err = Serve(transport.NewConn(dummy.NewConn(), 0), session, respondWith(&calls, status.OK))
		require.ErrorIs(t, err, errors.ErrUsage)
	})
}

type gatekeeper struct {
	Handler
	allow bool
}

func (g gatekeeper) OnConnect(s *Session, _ net.Conn) bool {
	s.Store["seen"] = true
	return g.allow
}

func TestServer(t *testing.T) {
	newServer := func(handler Handler, log *bytes.Buffer) *Server {
		cfg := config.Default()
		cfg.Session.MaxRequests = 1
		return New(cfg, handler, zerolog.New(log).Level(zerolog.DebugLevel))
	}

	t.Run("serve", func(t *testing.T) {
		var calls int
		log := new(bytes.Buffer)
		client := dummy.NewConn([]byte("GET / HTTP/1.1\r\n\r\n"))
		newServer(respondWith(&calls, status.OK), log).HandleConn(client)
		require.Equal(t, 1, calls)
		require.True(t, client.Closed())
		require.Contains(t, log.String(), "max_requests")
	})

	t.Run("rejected by OnConnect", func(t *testing.T) {
		var calls int
		log := new(bytes.Buffer)
		client := dummy.NewConn([]byte("GET / HTTP/1.1\r\n\r\n"))
		handler := gatekeeper{Handler: respondWith(&calls, status.OK)}
		newServer(handler, log).HandleConn(client)
		require.Zero(t, calls)
		require.Empty(t, client.Written())
		require.True(t, client.Closed())
		require.Contains(t, log.String(), "rejected")
	})

	t.Run("failure is logged", func(t *testing.T) {
		var calls int
		log := new(bytes.Buffer)
		client := dummy.NewConn([]byte("BREW / HTTP/1.1\r\n\r\n"))
		newServer(respondWith(&calls, status.OK), log).HandleConn(client)
		require.Zero(t, calls)
		require.Contains(t, log.String(), `"level":"warn"`)
		require.Contains(t, log.String(), `"kind":"grammar"`)
		require.NotContains(t, log.String(), `"stack"`)
	})

	t.Run("transport failure carries stack", func(t *testing.T) {
		marshaler := zerolog.ErrorStackMarshaler
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		t.Cleanup(func() {
			zerolog.ErrorStackMarshaler = marshaler
		})

		var calls int
		log := new(bytes.Buffer)
		client := dummy.NewConn([]byte("GET / HTTP/1.1\r\n")).FailWith(syscall.ECONNRESET)
		newServer(respondWith(&calls, status.OK), log).HandleConn(client)
		require.Zero(t, calls)
		require.Contains(t, log.String(), `"kind":"transport"`)
		require.Contains(t, log.String(), `"stack":[{`)
		require.Contains(t, log.String(), `"func":"`)
	})
}
