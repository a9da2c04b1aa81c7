package log

import (
	"git.backbone/corpix/greeter/pkg/errors"
)

const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) Default() {
loop:
	for {
		switch {
		case c.Level == "":
			c.Level = "info"
		case c.Format == "":
			c.Format = FormatAuto
		default:
			break loop
		}
	}
}

func (c *Config) Validate() error {
	_, err := ParseLevel(c.Level)
	if err != nil {
		return err
	}

	switch c.Format {
	case FormatAuto, FormatJSON, FormatConsole:
	default:
		return errors.Errorf(
			"unexpected log format %q, expected one of: %q",
			c.Format, []string{FormatAuto, FormatJSON, FormatConsole},
		)
	}

	return nil
}
