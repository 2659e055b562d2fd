package transport

import (
	"net"

	"github.com/indigo-web/rgi/errors"
	"golang.org/x/sys/unix"
)

// PeerCredentials returns credentials of the peer for unix socket connections, and nil
// for any other.
func PeerCredentials(conn net.Conn) (*Credentials, error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, nil
	}

	raw, err := uc.SyscallConn()
	if err != nil {
		return nil, errors.Transport(err, "peer credentials")
	}

	var (
		ucred   *unix.Ucred
		sockErr error
	)

	err = raw.Control(func(fd uintptr) {
		ucred, sockErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err == nil {
		err = sockErr
	}
	if err != nil {
		return nil, errors.Transport(err, "peer credentials")
	}

	return &Credentials{
		PID: int(ucred.Pid),
		UID: int(ucred.Uid),
		GID: int(ucred.Gid),
	}, nil
}
