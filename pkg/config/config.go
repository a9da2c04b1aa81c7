package config

import (
	"time"

	revip "github.com/corpix/revip"
	"github.com/go-yaml/yaml"

	"git.backbone/corpix/greeter/pkg/client"
	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/greeter"
	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/meta"
	"git.backbone/corpix/greeter/pkg/telemetry"
)

type (
	Postprocessor = func(*Config) error

	Config struct {
		Log               *log.Config       `yaml:"log"`
		Server            *greeter.Config   `yaml:"server"`
		Client            *client.Config    `yaml:"client"`
		Telemetry         *telemetry.Config `yaml:"telemetry"`
		ShutdownGraceTime time.Duration     `yaml:"shutdown-grace-time"`
	}
)

var (
	EnvironPrefix = meta.EnvironPrefix

	Marshaler   = yaml.Marshal
	Unmarshaler = yaml.Unmarshal

	// InitPostprocessors are applied to configs which are about to run.
	InitPostprocessors = []Postprocessor{Validate}
	// LocalPostprocessors keep the config as loaded, for tooling.
	LocalPostprocessors = []Postprocessor{}
)

func (c *Config) Default() {
loop:
	for {
		switch {
		case c.Log == nil:
			c.Log = &log.Config{}
		case c.Server == nil:
			c.Server = &greeter.Config{}
		case c.Client == nil:
			c.Client = &client.Config{}
		case c.Telemetry == nil:
			c.Telemetry = &telemetry.Config{}
		case c.ShutdownGraceTime <= 0:
			c.ShutdownGraceTime = 30 * time.Second
		default:
			break loop
		}
	}

	c.Log.Default()
	c.Server.Default()
	c.Server.Timeout.Default()
	c.Server.CORS.Default()
	c.Server.Swagger.Default()
	c.Client.Default()
	c.Telemetry.Default()
	c.Telemetry.Timeout.Default()
}

func Validate(c *Config) error {
	validators := []struct {
		name     string
		validate func() error
	}{
		{"log", c.Log.Validate},
		{"server", c.Server.Validate},
		{"server.cors", c.Server.CORS.Validate},
		{"client", c.Client.Validate},
		{"telemetry", c.Telemetry.Validate},
	}

	for _, v := range validators {
		err := v.validate()
		if err != nil {
			return errors.Wrapf(err, "invalid %s configuration", v.name)
		}
	}

	return nil
}

func Default() (*Config, error) {
	c := &Config{}
	c.Default()

	return c, nil
}

// Load reads paths in order, then the environment, later sources
// overriding earlier ones. Defaults fill whatever is left unset.
func Load(paths []string, postprocessors ...Postprocessor) (*Config, error) {
	c := &Config{}

	sources := make([]revip.Option, 0, len(paths)+1)
	for _, path := range paths {
		sources = append(sources, revip.FromFile(path, Unmarshaler))
	}
	sources = append(sources, revip.FromEnviron(EnvironPrefix))

	for _, source := range sources {
		err := source(c)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
	}

	c.Default()

	for _, pp := range postprocessors {
		err := pp(c)
		if err != nil {
			return nil, err
		}
	}

	return c, nil
}
