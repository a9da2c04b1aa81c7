package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
	swagger "github.com/swaggo/echo-swagger"
)

// see: https://github.com/swaggo/swag#declarative-comments-format

// MountSwagger serves the registered swag document and the UI under prefix.
// Documents are registered by importing a swag generated package.
func MountSwagger(e *echo.Echo, prefix string) {
	prefix = "/" + strings.Trim(prefix, "/")
	index := prefix + "/index.html"
	redirect := func(c echo.Context) error {
		return c.Redirect(http.StatusPermanentRedirect, index)
	}

	e.GET(prefix, redirect)
	e.GET(prefix+"/", redirect)
	e.GET(prefix+"/*", swagger.WrapHandler)
}
