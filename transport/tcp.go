package transport

import (
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/internal/timer"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP runs the accept loop over a TCP socket. Every admitted connection is served in its
// own goroutine and closed once the callback returns.
type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
}

func NewTCP() *TCP {
	tcp := newTCP(nil)
	return &tcp
}

func newTCP(l listener) TCP {
	return TCP{
		l:    l,
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) error {
	l, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.l = l
	return nil
}

// Addr returns the address the transport is bound to.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

func (t *TCP) Listen(cfg config.NET, gate Gate, cb func(conn net.Conn)) error {
	for !t.stop.Load() {
		err := t.l.SetDeadline(timer.Now().Add(cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}

			if t.stop.Load() && errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		if !gate.Enter(conn) {
			_ = conn.Close()
			continue
		}

		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			defer gate.Leave()

			cb(conn)
			_ = conn.Close()
		}(conn)
	}

	return nil
}

func (t *TCP) Stop() {
	t.stop.Store(true)
}

func (t *TCP) Close() {
	if t.l != nil {
		_ = t.l.Close()
	}
}

func (t *TCP) Wait() {
	t.wg.Wait()
}
