package transport

import (
	"net"
)

// Unix is the accept loop over a unix domain socket. The socket file is removed when
// the transport is closed.
type Unix struct {
	TCP
}

func NewUnix() *Unix {
	return &Unix{TCP: newTCP(nil)}
}

func (u *Unix) Bind(path string) error {
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return err
	}

	u.TCP = newTCP(l)
	return nil
}
