//go:build !linux

package transport

import (
	"net"
)

// PeerCredentials isn't supported on this platform, so it always returns nil.
func PeerCredentials(net.Conn) (*Credentials, error) {
	return nil, nil
}
