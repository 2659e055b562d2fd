package transport

import (
	"net"
	"sync/atomic"

	"github.com/indigo-web/rgi/config"
)

// Supervisor runs multiple transports at once. All of them share the same gate, so
// connection limits are applied across all listeners.
type Supervisor struct {
	stopped *atomic.Bool
	ts      []boundTransport
	gate    Gate
	stopch  chan struct{}
}

func NewSupervisor(gate Gate) Supervisor {
	return Supervisor{
		stopped: new(atomic.Bool),
		gate:    gate,
		stopch:  make(chan struct{}),
	}
}

// Add binds the transport. If binding fails, all the transports bound before are closed.
func (s *Supervisor) Add(addr string, transport Transport, cb func(net.Conn)) error {
	err := transport.Bind(addr)
	if err != nil {
		s.close()
		return err
	}

	s.ts = append(s.ts, boundTransport{
		cb: cb,
		t:  transport,
	})

	return nil
}

// Run blocks until either any of the transports fails, or Stop is called. In both cases
// all the transports are gracefully stopped, waiting for every connection to be served.
func (s *Supervisor) Run(cfg config.NET) error {
	if len(s.ts) == 0 {
		return nil
	}

	errch := make(chan error)

	for _, t := range s.ts {
		go func(t boundTransport, ch chan<- error) {
			ch <- t.t.Listen(cfg, s.gate, t.cb)
		}(t, errch)
	}

	select {
	case err := <-errch:
		s.stop()
		drain(errch, len(s.ts)-1)

		return err
	case <-s.stopch:
		s.stop()
		drain(errch, len(s.ts))
		s.stopch <- struct{}{}

		return nil
	}
}

// Stop must be called only while Run is running.
func (s *Supervisor) Stop() {
	if !s.stopped.Load() {
		s.stopch <- struct{}{}
		<-s.stopch
	}
}

func (s *Supervisor) stop() {
	if s.stopped.Load() {
		return
	}

	s.stopped.Store(true)

	for _, t := range s.ts {
		t.t.Stop()
	}

	for _, t := range s.ts {
		t.t.Wait()
		t.t.Close()
	}
}

func (s *Supervisor) close() {
	for _, t := range s.ts {
		t.t.Close()
	}
}

type boundTransport struct {
	cb func(conn net.Conn)
	t  Transport
}

func drain(ch <-chan error, n int) {
	for range n {
		<-ch
	}
}
