package config

import (
	"time"
)

// Wire-level limits. They are fixed by the protocol grammar the engine speaks and therefore
// aren't tunable.
const (
	// BufferSize is the capacity of both read and write buffers of every connection. A
	// preamble must fit into it entirely.
	BufferSize = 32 * 1024
	// MaxLineSize limits a single chunk-size line.
	MaxLineSize = 4096
	// MaxHeaders is the maximal number of header lines per message.
	MaxHeaders = 20
	// MaxHeaderKeySize limits a header name length.
	MaxHeaderKeySize = 32
	// MaxContentLengthSize is how many decimal digits a content-length value may have.
	MaxContentLengthSize = 16
	// MaxLength is the greatest content-length (and range bound) accepted.
	MaxLength = 9999999999999999
	// IOSize is the size of a single piece body iteration produces.
	IOSize = 1024 * 1024
	// MaxIOSize limits both a single chunk and the amount of data read into memory at once.
	MaxIOSize = 16 * 1024 * 1024
	// MaxRequestsLimit is the upper boundary of Session.MaxRequests.
	MaxRequestsLimit = 75000
)

type (
	NET struct {
		// ReadTimeout is applied to every single socket operation, both read and write. A
		// zero value disables deadlines.
		ReadTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop. Defaults to 5 seconds.
		AcceptLoopInterruptPeriod time.Duration
		// MaxConnections limits simultaneously served connections. Connections above the
		// limit are closed right after being accepted.
		MaxConnections int64
	}

	Session struct {
		// MaxRequests is how many exchanges a single connection may serve before being
		// closed. Must be in range 0..MaxRequestsLimit.
		MaxRequests int
	}
)

// Config holds server-side settings.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually.
type Config struct {
	NET     NET
	Session Session
}

// Default returns default server config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadTimeout:               30 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
			MaxConnections:            50,
		},
		Session: Session{
			MaxRequests: 500,
		},
	}
}

// Client holds options of a client descriptor.
type Client struct {
	// Host is the value of the host header sent with every request. If empty, it's derived
	// from the address the client is connecting to, unless OmitHost is set. Unix socket
	// addresses never produce the header implicitly.
	Host string `test:"nullable"`

	// OmitHost disables the host header completely.
	OmitHost bool `test:"nullable"`

	// Authorization, if set, is sent with every request.
	Authorization string `test:"nullable"`

	// Timeout is applied to every socket operation of a connection.
	Timeout time.Duration
}

// DefaultClient returns default client options.
func DefaultClient() Client {
	return Client{
		Timeout: 65 * time.Second,
	}
}
