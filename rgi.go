// Package rgi is a server application built on the HTTP/1.1 framing engine. It runs
// a set of listeners, serving every accepted connection with a single handler.
package rgi

import (
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/indigo-web/rgi/config"
	"github.com/indigo-web/rgi/errors"
	"github.com/indigo-web/rgi/server"
	"github.com/indigo-web/rgi/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

type hooks struct {
	OnStart, OnStop func()
}

// App is the server application.
type App struct {
	cfg        *config.Config
	hooks      hooks
	log        zerolog.Logger
	transports []Transport
	supervisor atomic.Pointer[transport.Supervisor]
}

// New returns a new App instance listening at the TCP address. An empty address adds no
// listener, so they must be added via Listen.
func New(addr string) *App {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	app := &App{
		cfg: config.Default(),
		log: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger(),
	}

	if len(addr) > 0 {
		app.Listen(addr, TCP())
	}

	return app
}

// Tune replaces the default config.
func (a *App) Tune(cfg *config.Config) *App {
	a.cfg = cfg
	return a
}

// Logger replaces the default logger, writing to stderr.
func (a *App) Logger(log zerolog.Logger) *App {
	a.log = log
	return a
}

// NotifyOnStart calls the callback at the moment, when all the listeners are bound. It
// isn't strongly guaranteed that they'll be able to accept new connections immediately.
func (a *App) NotifyOnStart(cb func()) *App {
	a.hooks.OnStart = cb
	return a
}

// NotifyOnStop calls the callback at the moment, when all the listeners are down. It's
// guaranteed that at the moment the callback is called, no connection is served anymore.
func (a *App) NotifyOnStop(cb func()) *App {
	a.hooks.OnStop = cb
	return a
}

// Listen adds a new listener at the address. If no transport is passed, plain TCP is
// used. Multiple transports share the same address, which makes sense mostly for
// different transports types.
func (a *App) Listen(addr string, transports ...Transport) *App {
	if len(transports) == 0 {
		transports = append(transports, TCP())
	}

	for _, t := range transports {
		t.addr = addr
		a.transports = append(a.transports, t)
	}

	return a
}

// Serve binds all the listeners and serves connections with the handler. It blocks until
// either Stop is called or any listener fails.
func (a *App) Serve(handler server.Handler) error {
	if handler == nil {
		return errors.Usagef("handler must not be nil")
	}

	if err := a.validate(); err != nil {
		return err
	}

	srv := server.New(a.cfg, handler, a.log)
	limiter := transport.NewLimiter(a.cfg.NET.MaxConnections, func(conn net.Conn) {
		a.log.Warn().
			Stringer("remote", conn.RemoteAddr()).
			Int64("limit", a.cfg.NET.MaxConnections).
			Msg("too many connections, rejecting")
	})

	sv := transport.NewSupervisor(limiter)
	for _, t := range a.transports {
		if err := sv.Add(t.addr, t.inner, srv.HandleConn); err != nil {
			a.log.Error().Err(err).Str("addr", t.addr).Msg("cannot bind")
			return err
		}

		a.log.Info().Str("addr", t.addr).Msg("listening")
	}

	a.supervisor.Store(&sv)
	callIfNotNil(a.hooks.OnStart)
	err := sv.Run(a.cfg.NET)
	a.supervisor.Store(nil)
	callIfNotNil(a.hooks.OnStop)

	if err != nil {
		a.log.Error().Err(err).Msg("stopped")
	} else {
		a.log.Info().Msg("stopped")
	}

	return err
}

func (a *App) validate() error {
	if len(a.transports) == 0 {
		return errors.Usagef("no listeners were added")
	}

	if a.cfg.NET.MaxConnections <= 0 {
		return errors.Usagef("need max connections > 0; got %d", a.cfg.NET.MaxConnections)
	}

	if s := a.cfg.Session.MaxRequests; s < 0 || s > config.MaxRequestsLimit {
		return errors.Usagef("need 0 <= max_requests <= %d; got %d", config.MaxRequestsLimit, s)
	}

	for _, t := range a.transports {
		if t.error != nil {
			return t.error
		}
	}

	return nil
}

// Stop stops accepting new connections and blocks until all the old ones are served.
// Calling it when the App isn't running is no-op.
func (a *App) Stop() {
	if sv := a.supervisor.Load(); sv != nil {
		sv.Stop()
	}
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
