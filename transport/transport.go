package transport

import (
	"net"

	"github.com/indigo-web/rgi/config"
)

// Transport is a listening socket feeding accepted connections to the callback.
type Transport interface {
	Bind(addr string) error
	// Listen runs the accept loop until Stop is called or an error occurs. Connections
	// are admitted by the gate.
	Listen(cfg config.NET, gate Gate, cb func(conn net.Conn)) error
	Stop()
	Close()
	Wait()
}
