package rgi

import (
	"crypto/tls"

	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/transport"
)

var (
	ErrNoCertificates = errors.Usagef("no certificates were passed")
	ErrBadCertificate = errors.Usagef("one or more passed certificates are empty")
)

// Transport describes a listener to be started by the App.
type Transport struct {
	addr  string // must be left intact. Used by App entity only
	inner transport.Transport
	error error
}

// TCP is the plain TCP listener.
func TCP() Transport {
	return Transport{
		inner: transport.NewTCP(),
	}
}

// Unix listens on a unix domain socket. Sessions of its connections carry peer
// credentials.
func Unix() Transport {
	return Transport{
		inner: transport.NewUnix(),
	}
}

// TLS wraps accepted TCP connections into TLS with the config. At least one certificate
// must be presented, unless certificates are obtained dynamically via GetCertificate.
func TLS(config *tls.Config) Transport {
	switch {
	case config == nil:
		return Transport{error: ErrNoCertificates}
	case config.GetCertificate == nil && len(config.Certificates) == 0:
		return Transport{error: ErrNoCertificates}
	case !noEmptyCerts(config.Certificates):
		return Transport{error: ErrBadCertificate}
	}

	return Transport{
		inner: transport.NewTLS(config),
	}
}

// Cert loads the key pair. In case of an error an empty certificate is returned, which
// will be reported on starting the application.
func Cert(cert, key string) tls.Certificate {
	c, _ := tls.LoadX509KeyPair(cert, key)
	return c
}

func noEmptyCerts(certs []tls.Certificate) bool {
	for _, c := range certs {
		if c.Certificate == nil {
			return false
		}
	}

	return true
}
