package telemetry

import (
	"context"
	"net"
	"net/http"

	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/server"
	"git.backbone/corpix/greeter/pkg/telemetry/registry"
)

const Subsystem = "telemetry"

type Registry = registry.Registry

var DefaultRegistry = registry.DefaultRegistry

//

type Server struct {
	config   Config
	log      log.Logger
	srv      *server.Server
	http     *http.Server
	listener net.Listener
	handler  http.Handler
}

func (s *Server) ListenAndServe() error {
	err := server.Serve(s.http, s.listener)
	if err == nil {
		s.log.Warn().Msg("server shutdown")
	}
	return err
}

func (s *Server) Handle(ctx server.Context) error {
	s.handler.ServeHTTP(
		ctx.Response(),
		ctx.Request(),
	)
	return nil
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Close() error {
	return s.http.Close()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func New(c Config, l log.Logger, r *Registry, lr net.Listener) (*Server, error) {
	l = l.With().
		Str("component", Subsystem).
		Str("listener", lr.Addr().String()).
		Logger()

	h := promhttp.InstrumentMetricHandler(
		r,
		promhttp.HandlerFor(
			r,
			promhttp.HandlerOpts{ErrorLog: log.Std(l)},
		),
	)

	e, err := server.New(Subsystem, l, r)
	if err != nil {
		return nil, err
	}
	e.Use(echomw.BodyLimit("0"))

	s := &Server{
		config:   c,
		log:      l,
		srv:      e,
		listener: lr,
		handler:  h,
		http: server.NewHTTP(
			c.Addr,
			server.HTTPTimeoutOption(*c.Timeout),
			server.HTTPErrorLogOption(l),
			server.HTTPHandlerOption(e),
		),
	}

	e.GET(c.Path, s.Handle)

	return s, nil
}
