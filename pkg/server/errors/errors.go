package errors

import (
	"net/http"

	echo "github.com/labstack/echo/v4"

	"git.backbone/corpix/greeter/pkg/errors"
)

// Error is a request error which carries the status code it should be reported with.
type Error struct {
	Code int
	Err  error
	Meta interface{}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Chain is the underlying error with its wrapping context, used for logging.
func (e *Error) Chain() error {
	if e.Err == nil {
		return errors.New(e.Error())
	}
	return e.Err
}

func NewError(code int, err error, meta ...interface{}) *Error {
	e := &Error{Code: code, Err: err}
	switch len(meta) {
	case 0:
	case 1:
		e.Meta = meta[0]
	default:
		e.Meta = meta
	}
	return e
}

// StatusCode resolves the status code err would be reported with.
func StatusCode(err error) int {
	var (
		e  *Error
		he *echo.HTTPError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &e):
		return e.Code
	case errors.As(err, &he):
		return he.Code
	default:
		return http.StatusInternalServerError
	}
}

func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
