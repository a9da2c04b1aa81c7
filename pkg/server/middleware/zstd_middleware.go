package middleware

import (
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/klauspost/compress/zstd"
	echo "github.com/labstack/echo/v4"

	"git.backbone/corpix/greeter/pkg/server/errors"
)

const ZstdScheme = "zstd"

type zstdResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *zstdResponseWriter) WriteHeader(code int) {
	w.Header().Del(echo.HeaderContentLength)
	w.ResponseWriter.WriteHeader(code)
}

func (w *zstdResponseWriter) Write(b []byte) (int, error) {
	if w.Header().Get(echo.HeaderContentType) == "" {
		w.Header().Set(echo.HeaderContentType, http.DetectContentType(b))
	}
	return w.Writer.Write(b)
}

func (w *zstdResponseWriter) Flush() {
	if f, ok := w.Writer.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type zstdRequestBody struct {
	*zstd.Decoder
	body io.Closer
}

func (b *zstdRequestBody) Close() error {
	b.Decoder.Close()
	return b.body.Close()
}

func acceptsZstd(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if strings.EqualFold(coding, ZstdScheme) {
			return true
		}
	}
	return false
}

// NewZstd decodes zstd request bodies and encodes responses for clients
// which accept the zstd content coding.
func NewZstd() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			if strings.EqualFold(req.Header.Get(echo.HeaderContentEncoding), ZstdScheme) {
				dec, err := zstd.NewReader(req.Body)
				if err != nil {
					return errors.NewError(http.StatusBadRequest, err)
				}
				req.Body = &zstdRequestBody{Decoder: dec, body: req.Body}
				req.Header.Del(echo.HeaderContentEncoding)
				req.Header.Del(echo.HeaderContentLength)
				req.ContentLength = -1
			}

			res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)
			if !acceptsZstd(req.Header.Get(echo.HeaderAcceptEncoding)) {
				return next(c)
			}

			rw := res.Writer
			enc, err := zstd.NewWriter(rw)
			if err != nil {
				return err
			}
			res.Header().Set(echo.HeaderContentEncoding, ZstdScheme)
			defer func() {
				if res.Size == 0 {
					if res.Header().Get(echo.HeaderContentEncoding) == ZstdScheme {
						res.Header().Del(echo.HeaderContentEncoding)
					}
					// nothing was written, leave the response
					// pristine for the error handler
					res.Writer = rw
					enc.Reset(ioutil.Discard)
				}
				_ = enc.Close()
			}()
			res.Writer = &zstdResponseWriter{Writer: enc, ResponseWriter: rw}

			return next(c)
		}
	}
}
