package server

import (
	"net"
	"net/http"

	echo "github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"git.backbone/corpix/greeter/pkg/codec"
	"git.backbone/corpix/greeter/pkg/log"
	serverErrors "git.backbone/corpix/greeter/pkg/server/errors"
	"git.backbone/corpix/greeter/pkg/server/middleware"
	telemetry "git.backbone/corpix/greeter/pkg/telemetry/registry"
)

type (
	Server         = echo.Echo
	MiddlewareFunc = echo.MiddlewareFunc
	HandlerFunc    = echo.HandlerFunc
	Context        = echo.Context
	Router         = echo.Group

	HTTPError = echo.HTTPError
	Error     = serverErrors.Error

	ResultError struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	ResultPayload = interface{}
	Result        struct {
		Ok      bool          `json:"ok"`
		Error   *ResultError  `json:"error,omitempty"`
		Payload ResultPayload `json:"payload,omitempty"`
	}

	HTTPOption = func(*http.Server)
)

const (
	HeaderAccept                   = echo.HeaderAccept
	HeaderAcceptEncoding           = echo.HeaderAcceptEncoding
	HeaderContentEncoding          = echo.HeaderContentEncoding
	HeaderContentLength            = echo.HeaderContentLength
	HeaderContentType              = echo.HeaderContentType
	HeaderVary                     = echo.HeaderVary
	HeaderXForwardedFor            = echo.HeaderXForwardedFor
	HeaderXRealIP                  = echo.HeaderXRealIP
	HeaderXRequestID               = echo.HeaderXRequestID
	HeaderOrigin                   = echo.HeaderOrigin
	HeaderAccessControlAllowOrigin = echo.HeaderAccessControlAllowOrigin

	MIMETextPlain            = echo.MIMETextPlain
	MIMETextPlainCharsetUTF8 = echo.MIMETextPlainCharsetUTF8
)

var (
	NewError   = serverErrors.NewError
	StatusCode = serverErrors.StatusCode

	ErrUnsupportedMediaType = echo.ErrUnsupportedMediaType
)

func HTTPTimeoutOption(c TimeoutConfig) HTTPOption {
	return func(s *http.Server) {
		s.ReadTimeout = c.Read
		s.WriteTimeout = c.Write
		s.IdleTimeout = c.Idle
	}
}

func HTTPHandlerOption(h http.Handler) HTTPOption {
	return func(s *http.Server) {
		s.Handler = h
	}
}

func HTTPErrorLogOption(l log.Logger) HTTPOption {
	return func(s *http.Server) {
		s.ErrorLog = log.Std(l)
	}
}

func NewHTTP(addr string, options ...HTTPOption) *http.Server {
	s := &http.Server{Addr: addr}
	for _, fn := range options {
		fn(s)
	}
	return s
}

// Serve runs s on lr, a closed server is not an error.
func Serve(s *http.Server, lr net.Listener) error {
	err := s.Serve(lr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

//

// Negotiate writes v in the encoding preferred by the Accept header.
func Negotiate(c Context, code int, v interface{}) error {
	cc := codec.Negotiate(c.Request().Header.Get(HeaderAccept))
	buf, err := cc.Marshal(v)
	if err != nil {
		return err
	}
	c.Response().Header().Add(HeaderVary, HeaderAccept)

	return c.Blob(code, cc.ContentType, buf)
}

// Bind decodes the request body according to its Content-Type.
func Bind(c Context, v interface{}) error {
	req := c.Request()
	cc, ok := codec.ByMIME(req.Header.Get(HeaderContentType))
	if !ok {
		return ErrUnsupportedMediaType
	}

	buf, err := readBody(req)
	if err != nil {
		if he, ok := err.(*HTTPError); ok {
			return he
		}
		return NewError(http.StatusBadRequest, err)
	}
	err = cc.Unmarshal(buf, v)
	if err != nil {
		return NewError(http.StatusBadRequest, err, cc.Name)
	}

	return nil
}

//

func DefaultHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if _, ok := err.(*echo.HTTPError); ok {
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}

	//

	code := http.StatusInternalServerError
	r := Result{
		Ok: false,
		Error: &ResultError{
			Code:    code,
			Message: http.StatusText(code),
		},
	}

	if e, ok := serverErrors.AsError(err); ok {
		r.Error.Code = e.Code
		r.Error.Message = http.StatusText(e.Code)
		if e.Code < http.StatusInternalServerError {
			r.Error.Message = e.Error()
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(r.Error.Code)
		return
	}
	_ = c.JSON(r.Error.Code, r)
}

func New(name string, l log.Logger, r *telemetry.Registry) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = &middleware.Logger{Logger: l}
	e.StdLogger = log.Std(l)
	e.HTTPErrorHandler = DefaultHTTPErrorHandler

	tm, err := middleware.NewTelemetry(r, name)
	if err != nil {
		return nil, err
	}

	e.Use(echomw.RequestID())
	e.Use(middleware.NewLogger(l, ""))
	e.Use(tm)
	e.Use(middleware.NewRecover(nil, l))

	return e, nil
}
