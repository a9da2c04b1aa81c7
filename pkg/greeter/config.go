package greeter

import (
	"net"

	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/server"
	"git.backbone/corpix/greeter/pkg/server/middleware"
)

const DefaultAddr = "0.0.0.0:8080"

type Config struct {
	Addr      string                 `yaml:"addr"`
	BodyLimit string                 `yaml:"body-limit"`
	Compress  bool                   `yaml:"compress"`
	Swagger   *SwaggerConfig         `yaml:"swagger"`
	CORS      *middleware.CORSConfig `yaml:"cors"`
	Timeout   *server.TimeoutConfig  `yaml:"timeout"`
}

func (c *Config) Default() {
loop:
	for {
		switch {
		case c.Addr == "":
			c.Addr = DefaultAddr
		case c.BodyLimit == "":
			c.BodyLimit = "1M"
		case c.Swagger == nil:
			c.Swagger = &SwaggerConfig{}
		case c.CORS == nil:
			c.CORS = &middleware.CORSConfig{}
		case c.Timeout == nil:
			c.Timeout = &server.TimeoutConfig{}
		default:
			break loop
		}
	}
}

func (c *Config) Validate() error {
	_, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return errors.Wrapf(err, "invalid bind address %q", c.Addr)
	}
	return nil
}

//

type SwaggerConfig struct {
	Enable bool   `yaml:"enable"`
	Prefix string `yaml:"prefix"`
}

func (c *SwaggerConfig) Default() {
loop:
	for {
		switch {
		case c.Prefix == "":
			c.Prefix = "/swagger"
		default:
			break loop
		}
	}
}
