package server

import (
	"io"
	"net"
	"strconv"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/http/status"
	"github.com/indigo-web/rgi/transport"
)

// Session is the server-side bookkeeping of a single connection.
type Session struct {
	// Address is the remote address of the connection.
	Address net.Addr
	// Credentials are presented for unix socket connections only.
	Credentials *transport.Credentials
	// Store is an opaque per-connection storage for handlers. Values implementing
	// io.Closer are closed when the connection is done.
	Store map[string]any

	maxRequests int
	requests    int
	closed      bool
	message     string
}

func NewSession(address net.Addr, credentials *transport.Credentials, maxRequests int) (*Session, error) {
	if maxRequests < 0 || maxRequests > config.MaxRequestsLimit {
		return nil, errors.Usagef(
			"need 0 <= max_requests <= %d; got %d", config.MaxRequestsLimit, maxRequests,
		)
	}

	return &Session{
		Address:     address,
		Credentials: credentials,
		Store:       make(map[string]any),
		maxRequests: maxRequests,
	}, nil
}

func (s *Session) String() string {
	addr := "<unknown>"
	if s.Address != nil {
		addr = s.Address.String()
	}

	if s.Credentials == nil {
		return addr
	}

	return addr + " " + s.Credentials.String()
}

func (s *Session) MaxRequests() int {
	return s.maxRequests
}

// Requests returns the number of completed exchanges.
func (s *Session) Requests() int {
	return s.requests
}

func (s *Session) Closed() bool {
	return s.closed
}

// Message returns the reason the session was closed for.
func (s *Session) Message() string {
	return s.message
}

// Close marks the session as closed, so no further requests are going to be read. Only
// the first reason is recorded.
func (s *Session) Close(message string) {
	if !s.closed {
		s.message = message
	}

	s.closed = true
}

// ResponseComplete accounts a completed exchange. Error statuses except the non-fatal
// ones, or reaching the requests limit, close the session.
func (s *Session) ResponseComplete(code status.Code, reason string) {
	if code >= 400 && !status.NonFatal(code) {
		s.Close(strconv.Itoa(int(code)) + " " + reason)
	}

	s.requests++
	if s.requests >= s.maxRequests {
		s.Close("max_requests")
	}
}

// release closes everything closable left in the store.
func (s *Session) release() {
	for key, value := range s.Store {
		if closer, ok := value.(io.Closer); ok {
			_ = closer.Close()
		}

		delete(s.Store, key)
	}
}
