package transport

import (
	"crypto/tls"
	"net"
)

// TLS accepts TCP connections and wraps them into the server side of TLS, using an
// already prepared config. Certificates aren't managed in any way.
type TLS struct {
	config *tls.Config
	TCP
}

func NewTLS(config *tls.Config) *TLS {
	return &TLS{config: config, TCP: newTCP(nil)}
}

func (t *TLS) Bind(addr string) error {
	tcp, err := bindTCP(addr)
	if err != nil {
		return err
	}

	l := tls.NewListener(tcp, t.config)
	t.TCP = newTCP(tlsAdapter{tcp, l})

	return nil
}

type tlsAdapter struct {
	*net.TCPListener
	tls net.Listener
}

func (t tlsAdapter) Accept() (net.Conn, error) {
	return t.tls.Accept()
}
