package server

import (
	"net"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/transport"
	"github.com/rs/zerolog"
)

// Server serves accepted connections with the handler.
type Server struct {
	cfg     *config.Config
	handler Handler
	log     zerolog.Logger
}

func New(cfg *config.Config, handler Handler, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		log:     log,
	}
}

// HandleConn serves a single connection until its session is closed. It's safe to be
// called from multiple goroutines. The connection is closed on return.
func (s *Server) HandleConn(conn net.Conn) {
	defer conn.Close()

	credentials, err := transport.PeerCredentials(conn)
	if err != nil {
		s.log.Warn().Err(err).Msg("cannot get peer credentials")
		return
	}

	session, err := NewSession(conn.RemoteAddr(), credentials, s.cfg.Session.MaxRequests)
	if err != nil {
		s.log.Error().Err(err).Msg("cannot create session")
		return
	}

	defer session.release()
	log := s.log.With().Stringer("session", session).Logger()

	if ch, ok := s.handler.(ConnectHandler); ok && !ch.OnConnect(session, conn) {
		log.Debug().Msg("connection rejected by OnConnect")
		return
	}

	err = Serve(transport.NewConn(conn, s.cfg.NET.ReadTimeout), session, s.handler)
	switch {
	case err == nil:
		log.Debug().
			Str("reason", session.Message()).
			Int("requests", session.Requests()).
			Msg("session closed")
	case err == errors.ErrEmptyPreamble:
		log.Debug().
			Int("requests", session.Requests()).
			Msg("connection closed by peer")
	default:
		log.Warn().
			Stack().
			Err(err).
			Stringer("kind", errors.KindOf(err)).
			Int("requests", session.Requests()).
			Msg("session failed")
	}
}
