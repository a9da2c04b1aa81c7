package server

import (
	"io/ioutil"
	"net/http"

	echo "github.com/labstack/echo/v4"

	"git.backbone/corpix/greeter/pkg/errors"
)

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, errors.New("request body is empty")
	}

	buf, err := ioutil.ReadAll(req.Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, errors.Wrap(err, "failed to read request body")
	}

	return buf, nil
}
