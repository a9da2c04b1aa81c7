package telemetry

import (
	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/server"
)

type Config struct {
	Enable  bool                  `yaml:"enable"`
	Addr    string                `yaml:"addr"`
	Path    string                `yaml:"path"`
	Timeout *server.TimeoutConfig `yaml:"timeout"`
}

func (c *Config) Default() {
loop:
	for {
		switch {
		case c.Addr == "":
			c.Addr = "127.0.0.1:4280"
		case c.Path == "":
			c.Path = "/"
		case c.Timeout == nil:
			c.Timeout = &server.TimeoutConfig{}
		default:
			break loop
		}
	}
}

func (c *Config) Validate() error {
	if !c.Enable {
		return nil
	}
	if c.Addr == "" {
		return errors.New("addr should not be empty")
	}
	if c.Path == "" {
		return errors.New("path should not be empty")
	}

	return nil
}
