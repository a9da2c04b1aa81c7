package middleware

import (
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/log"
	serverErrors "git.backbone/corpix/greeter/pkg/server/errors"
)

// NewRecover turns handler panics into internal server errors.
func NewRecover(skipper echomw.Skipper, l log.Logger) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomw.DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			if skipper(c) {
				return next(c)
			}

			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				perr, ok := r.(error)
				if !ok {
					perr = errors.Errorf("%v", r)
				}
				perr = errors.WithStack(perr)

				l.Error().
					Str("stack", fmt.Sprintf("%+v", perr)).
					Msg("recovered from panic")

				err = serverErrors.NewError(
					http.StatusInternalServerError,
					errors.Wrap(perr, "panic while handling request"),
				)
			}()

			return next(c)
		}
	}
}
