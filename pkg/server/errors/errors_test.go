package errors

import (
	"io"
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"git.backbone/corpix/greeter/pkg/errors"
)

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusCode(nil))
	assert.Equal(t, http.StatusBadRequest, StatusCode(NewError(http.StatusBadRequest, io.EOF)))
	assert.Equal(t, http.StatusNotFound, StatusCode(echo.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(io.EOF))
	assert.Equal(
		t, http.StatusTeapot,
		StatusCode(errors.Wrap(NewError(http.StatusTeapot, nil), "wrapped")),
	)
}

func TestError(t *testing.T) {
	e := NewError(http.StatusBadRequest, io.EOF, "a", "b")
	assert.Equal(t, io.EOF.Error(), e.Error())
	assert.Equal(t, []interface{}{"a", "b"}, e.Meta)
	assert.True(t, errors.Is(e, io.EOF))

	e = NewError(http.StatusConflict, nil)
	assert.Equal(t, http.StatusText(http.StatusConflict), e.Error())
	assert.Nil(t, e.Meta)
	assert.Error(t, e.Chain())
}
