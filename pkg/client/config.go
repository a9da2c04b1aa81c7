package client

import (
	"net/url"
	"time"

	"git.backbone/corpix/greeter/pkg/codec"
	"git.backbone/corpix/greeter/pkg/errors"
)

type Config struct {
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
	Encoding string        `yaml:"encoding"`
	Compress bool          `yaml:"compress"`
}

func (c *Config) Default() {
loop:
	for {
		switch {
		case c.URL == "":
			c.URL = "http://127.0.0.1:8080"
		case c.Timeout <= 0:
			c.Timeout = 5 * time.Second
		case c.Encoding == "":
			c.Encoding = codec.Default.Name
		default:
			break loop
		}
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return errors.Wrapf(err, "failed to parse url %q", c.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("unexpected url scheme %q, expected http or https", u.Scheme)
	}

	_, err = codec.ByName(c.Encoding)
	return err
}
