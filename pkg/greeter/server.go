package greeter

import (
	"context"
	"net"
	"net/http"

	echomw "github.com/labstack/echo/v4/middleware"

	_ "git.backbone/corpix/greeter/pkg/docs"
	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/server"
	"git.backbone/corpix/greeter/pkg/server/middleware"
	"git.backbone/corpix/greeter/pkg/telemetry/registry"
)

const Subsystem = "greeter"

type Server struct {
	config   Config
	log      log.Logger
	srv      *server.Server
	http     *http.Server
	listener net.Listener
}

// Fetch godoc
// @Summary Fixed payload
// @Produce json
// @Produce application/msgpack
// @Success 200 {object} Payload
// @Router / [get]
func (s *Server) Fetch(c server.Context) error {
	return server.Negotiate(c, http.StatusOK, Fixed())
}

// Echo godoc
// @Summary Decode payload codes and echo them after the label
// @Accept json
// @Accept application/msgpack
// @Produce plain
// @Param payload body Payload true "payload"
// @Success 200 {string} string
// @Failure 400 {object} server.Result
// @Failure 415 {object} server.Result
// @Router / [post]
func (s *Server) Echo(c server.Context) error {
	p := Payload{}
	err := server.Bind(c, &p)
	if err != nil {
		return err
	}

	text, err := p.Echo()
	if err != nil {
		return server.NewError(http.StatusBadRequest, err, p.Label)
	}

	return c.String(http.StatusOK, text)
}

// Greet godoc
// @Summary Greet by name
// @Produce plain
// @Param name path string true "name to greet"
// @Success 200 {string} string
// @Router /hello/{name} [get]
func (s *Server) Greet(c server.Context) error {
	return c.String(http.StatusOK, Greeting(c.Param("name")))
}

//

func (s *Server) Handler() http.Handler {
	return s.srv
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// ListenAndServe blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info().Msg("accepting connections")
	err := server.Serve(s.http, s.listener)
	if err == nil {
		s.log.Info().Msg("server shutdown")
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight
// requests until ctx is done, then closes what is left.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("graceful shutdown failed, closing connections")
		_ = s.http.Close()
	}
	return err
}

func (s *Server) Close() error {
	return s.http.Close()
}

func New(c Config, l log.Logger, r *registry.Registry, lr net.Listener) (*Server, error) {
	l = l.With().
		Str("component", Subsystem).
		Str("listener", lr.Addr().String()).
		Logger()

	e, err := server.New(Subsystem, l, r)
	if err != nil {
		return nil, err
	}

	if c.CORS.Enable {
		e.Use(middleware.NewCORS(*c.CORS))
	}
	if c.Compress {
		e.Use(middleware.NewZstd())
	}
	e.Use(echomw.BodyLimit(c.BodyLimit))

	s := &Server{
		config:   c,
		log:      l,
		srv:      e,
		listener: lr,
		http: server.NewHTTP(
			c.Addr,
			server.HTTPTimeoutOption(*c.Timeout),
			server.HTTPErrorLogOption(l),
			server.HTTPHandlerOption(e),
		),
	}

	e.GET("/", s.Fetch)
	e.POST("/", s.Echo)
	e.GET("/hello/:name", s.Greet)

	if c.Swagger.Enable {
		middleware.MountSwagger(e, c.Swagger.Prefix)
	}

	return s, nil
}
