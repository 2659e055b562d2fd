package transport

import (
	"io"
	"net"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/indigo-web/rgi/config"
	"github.com/stretchr/testify/require"
)

func testConfig() config.NET {
	cfg := config.Default().NET
	cfg.AcceptLoopInterruptPeriod = 50 * time.Millisecond
	return cfg
}

func echo(conn net.Conn) {
	_, _ = io.Copy(conn, conn)
}

func roundtrip(t *testing.T, network, addr string) {
	conn, err := net.Dial(network, addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("hello"))
	require.NoError(t, err)
	buff := make([]byte, 5)
	_, err = io.ReadFull(conn, buff)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buff))
}

func TestTCP(t *testing.T) {
	t.Run("serve and stop", func(t *testing.T) {
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		done := make(chan error)
		go func() {
			done <- tcp.Listen(testConfig(), NewLimiter(10, nil), echo)
		}()

		roundtrip(t, "tcp", tcp.Addr().String())

		tcp.Stop()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "accept loop did not stop")
		}

		tcp.Wait()
		tcp.Close()
	})

	t.Run("connection limit", func(t *testing.T) {
		var rejected atomic.Int32
		release := make(chan struct{})
		tcp := NewTCP()
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		limiter := NewLimiter(1, func(net.Conn) {
			rejected.Add(1)
		})
		go func() {
			_ = tcp.Listen(testConfig(), limiter, func(conn net.Conn) {
				<-release
			})
		}()

		first, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		defer first.Close()
		// give the accept loop time to admit the first connection
		time.Sleep(50 * time.Millisecond)

		second, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		defer second.Close()

		_ = second.SetReadDeadline(time.Now().Add(time.Second))
		_, err = second.Read(make([]byte, 1))
		require.ErrorIs(t, err, io.EOF, "connection above the limit must be closed")
		require.Equal(t, int32(1), rejected.Load())

		close(release)
		tcp.Stop()
		tcp.Wait()
		tcp.Close()
	})
}

func TestUnix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgi.sock")
	unix := NewUnix()
	require.NoError(t, unix.Bind(path))

	credentials := make(chan *Credentials, 1)
	go func() {
		_ = unix.Listen(testConfig(), NewLimiter(10, nil), func(conn net.Conn) {
			creds, _ := PeerCredentials(conn)
			credentials <- creds
			echo(conn)
		})
	}()

	roundtrip(t, "unix", path)
	creds := <-credentials
	if creds != nil {
		require.NotZero(t, creds.PID)
	}

	unix.Stop()
	unix.Wait()
	unix.Close()
}

func TestLimiter(t *testing.T) {
	limiter := NewLimiter(2, nil)
	require.True(t, limiter.Enter(nil))
	require.True(t, limiter.Enter(nil))
	require.False(t, limiter.Enter(nil))
	limiter.Leave()
	require.True(t, limiter.Enter(nil))
}
