package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	gommon "github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/server/errors"
)

var _ echo.Logger = &Logger{}

func newLogger(t *testing.T, buf *bytes.Buffer) log.Logger {
	l, err := log.CreateWithWriter(log.Config{Level: "debug", Format: log.FormatJSON}, buf)
	require.NoError(t, err)
	return l
}

func TestLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	l := &Logger{Logger: newLogger(t, buf)}

	assert.Equal(t, gommon.DEBUG, l.Level())
	l.SetLevel(gommon.WARN)
	assert.Equal(t, gommon.WARN, l.Level())

	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.SetPrefix("echo")
	l.Warnf("shown %d", 1)
	assert.Contains(t, buf.String(), `"message":"shown 1"`)
	assert.Contains(t, buf.String(), `"prefix":"echo"`)

	buf.Reset()
	l.Errorj(gommon.JSON{"k": "v"})
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestRecover(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewRecover(nil, newLogger(t, buf))(func(c echo.Context) error {
		panic("boom")
	})

	e := echo.New()
	c := e.NewContext(
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRecorder(),
	)

	err := h(c)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, errors.StatusCode(err))
	assert.Contains(t, buf.String(), "recovered from panic")
}

func TestRequestLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if !c.Response().Committed {
			_ = c.NoContent(errors.StatusCode(err))
		}
	}
	e.Use(NewLogger(newLogger(t, buf), "request"))
	e.GET("/fail", func(c echo.Context) error {
		return errors.NewError(http.StatusBadRequest, nil, "meta")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), `"status":400`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"meta":"meta"`)
}

func TestAcceptsZstd(t *testing.T) {
	assert.True(t, acceptsZstd("zstd"))
	assert.True(t, acceptsZstd("gzip, ZSTD;q=0.5"))
	assert.False(t, acceptsZstd("gzip, br"))
	assert.False(t, acceptsZstd(""))
}

func TestCORSConfig(t *testing.T) {
	c := CORSConfig{}
	c.Default()
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, c.AllowMethods)
	assert.NoError(t, c.Validate())

	c.AllowOrigins = []string{"*"}
	c.AllowOriginsRegexp = []string{".*"}
	assert.Error(t, c.Validate())

	c.AllowOrigins = nil
	c.AllowOriginsRegexp = []string{"("}
	assert.Error(t, c.Validate())
}
