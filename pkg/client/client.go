package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/zstd"

	"git.backbone/corpix/greeter/pkg/codec"
	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/greeter"
	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/meta"
)

const zstdScheme = "zstd"

// StatusError is returned for replies with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

type Client struct {
	config Config
	log    log.Logger
	http   *http.Client
	codec  codec.Codec
	base   *url.URL
}

func (c *Client) url(path string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method string, target string, body interface{}) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		buf, err := c.codec.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		if c.config.Compress {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			buf = enc.EncodeAll(buf, nil)
			_ = enc.Close()
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s %s request", method, target)
	}

	req.Header.Set("User-Agent", meta.Name+"/"+meta.Version)
	req.Header.Set("Accept", c.codec.MIME)
	if body != nil {
		req.Header.Set("Content-Type", c.codec.ContentType)
		if c.config.Compress {
			req.Header.Set("Content-Encoding", zstdScheme)
		}
	}
	if c.config.Compress {
		req.Header.Set("Accept-Encoding", zstdScheme)
	}

	return req, nil
}

// do sends req and returns the decoded reply body.
// Bodies are always drained so connections are reused.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("sending request")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s %s failed", req.Method, req.URL)
	}
	defer res.Body.Close()

	var body io.Reader = res.Body
	if strings.EqualFold(res.Header.Get("Content-Encoding"), zstdScheme) {
		dec, err := zstd.NewReader(res.Body)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create zstd decoder")
		}
		defer dec.Close()
		body = dec
	}

	buf, err := ioutil.ReadAll(body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read response body")
	}
	_, _ = io.Copy(ioutil.Discard, res.Body)

	c.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", res.StatusCode).
		Int("bytes", len(buf)).
		Msg("received response")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res, buf, &StatusError{Code: res.StatusCode, Body: string(buf)}
	}

	return res, buf, nil
}

func (c *Client) decode(res *http.Response, buf []byte, v interface{}) error {
	cc, ok := codec.ByMIME(res.Header.Get("Content-Type"))
	if !ok {
		cc = c.codec
	}

	err := cc.Unmarshal(buf, v)
	if err != nil {
		return errors.Wrapf(err, "failed to unmarshal %s response", cc.Name)
	}
	return nil
}

//

func (c *Client) Fetch(ctx context.Context) (greeter.Payload, error) {
	p := greeter.Payload{}

	req, err := c.newRequest(ctx, http.MethodGet, c.url("/"), nil)
	if err != nil {
		return p, err
	}
	res, buf, err := c.do(req)
	if err != nil {
		return p, err
	}

	return p, c.decode(res, buf, &p)
}

func (c *Client) Echo(ctx context.Context, p greeter.Payload) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.url("/"), p)
	if err != nil {
		return "", err
	}
	_, buf, err := c.do(req)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

func (c *Client) Greet(ctx context.Context, name string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.url("/hello/"+url.PathEscape(name)), nil)
	if err != nil {
		return "", err
	}
	_, buf, err := c.do(req)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// Reflect sends p to an echoing endpoint (like https://httpbin.org/anything)
// and returns the payload it reflected back under the "json" key.
// Reflection endpoints only speak JSON, so the configured encoding is not used.
func (c *Client) Reflect(ctx context.Context, target string, p greeter.Payload) (greeter.Payload, error) {
	reflected := struct {
		JSON greeter.Payload `json:"json"`
	}{}

	rc := *c
	rc.codec = codec.JSON
	rc.config.Compress = false

	req, err := rc.newRequest(ctx, http.MethodPost, target, p)
	if err != nil {
		return reflected.JSON, err
	}
	_, buf, err := rc.do(req)
	if err != nil {
		return reflected.JSON, err
	}

	err = codec.JSON.Unmarshal(buf, &reflected)
	if err != nil {
		return reflected.JSON, errors.Wrap(err, "failed to unmarshal reflected payload")
	}

	return reflected.JSON, nil
}

//

func New(c Config, l log.Logger) (*Client, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(c.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse url %q", c.URL)
	}
	cc, err := codec.ByName(c.Encoding)
	if err != nil {
		return nil, err
	}

	return &Client{
		config: c,
		log:    l.With().Str("component", "client").Logger(),
		http:   &http.Client{Timeout: c.Timeout},
		codec:  cc,
		base:   base,
	}, nil
}
