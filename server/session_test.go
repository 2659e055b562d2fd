package server

import (
	"net"
	"testing"

	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/transport"
	"github.com/stretchr/testify/require"
)

type closer struct {
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return nil
}

func TestSession(t *testing.T) {
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}

	t.Run("max requests bounds", func(t *testing.T) {
		for _, n := range []int{-1, 75001} {
			_, err := NewSession(addr, nil, n)
			require.ErrorIs(t, err, errors.ErrUsage)
		}

		for _, n := range []int{0, 500, 75000} {
			s, err := NewSession(addr, nil, n)
			require.NoError(t, err)
			require.Equal(t, n, s.MaxRequests())
			require.Zero(t, s.Requests())
			require.False(t, s.Closed())
		}
	})

	t.Run("first close wins", func(t *testing.T) {
		s, err := NewSession(addr, nil, 10)
		require.NoError(t, err)
		s.Close("first")
		s.Close("second")
		require.True(t, s.Closed())
		require.Equal(t, "first", s.Message())
	})

	t.Run("response complete", func(t *testing.T) {
		s, err := NewSession(addr, nil, 3)
		require.NoError(t, err)

		for _, code := range []status.Code{status.OK, status.NotFound, status.Conflict} {
			require.False(t, s.Closed())
			s.ResponseComplete(code, status.Text(code))
		}

		require.True(t, s.Closed())
		require.Equal(t, "max_requests", s.Message())
		require.Equal(t, 3, s.Requests())
	})

	t.Run("fatal status", func(t *testing.T) {
		s, err := NewSession(addr, nil, 10)
		require.NoError(t, err)
		s.ResponseComplete(status.InternalServerError, "Internal Server Error")
		require.True(t, s.Closed())
		require.Equal(t, "500 Internal Server Error", s.Message())
		require.Equal(t, 1, s.Requests())
	})

	t.Run("string", func(t *testing.T) {
		s, err := NewSession(addr, nil, 1)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:8080", s.String())

		s.Credentials = &transport.Credentials{PID: 1, UID: 2, GID: 3}
		require.Equal(t, "127.0.0.1:8080 pid=1 uid=2 gid=3", s.String())

		s.Address = nil
		require.Equal(t, "<unknown> pid=1 uid=2 gid=3", s.String())
	})

	t.Run("release", func(t *testing.T) {
		s, err := NewSession(addr, nil, 1)
		require.NoError(t, err)
		c := new(closer)
		s.Store["conn"] = c
		s.Store["value"] = 42
		s.release()
		require.True(t, c.closed)
		require.Empty(t, s.Store)
	})
}
