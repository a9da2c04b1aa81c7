package middleware

import (
	"net/http"
	"regexp"

	"git.backbone/corpix/greeter/pkg/errors"
)

type CORSConfig struct {
	Enable             bool     `yaml:"enable"`
	AllowOriginsRegexp []string `yaml:"allow-origins-regexp"`
	AllowOrigins       []string `yaml:"allow-origins"`
	AllowMethods       []string `yaml:"allow-methods"`
	AllowHeaders       []string `yaml:"allow-headers"`
	AllowCredentials   bool     `yaml:"allow-credentials"`
	ExposeHeaders      []string `yaml:"expose-headers"`
	MaxAge             int      `yaml:"max-age"`
}

func (c *CORSConfig) Validate() error {
	if len(c.AllowOriginsRegexp) != 0 && len(c.AllowOrigins) != 0 {
		return errors.New("either allow origins regexp or allow origins list should be defined, not both")
	}
	for _, expr := range c.AllowOriginsRegexp {
		_, err := regexp.Compile(expr)
		if err != nil {
			return errors.Wrapf(err, "failed to compile allow origins regexp %q", expr)
		}
	}

	return nil
}

func (c *CORSConfig) Default() {
loop:
	for {
		switch {
		case len(c.AllowMethods) == 0:
			c.AllowMethods = []string{http.MethodGet, http.MethodPost}
		case c.MaxAge == 0:
			c.MaxAge = 900 // 15 min
		default:
			break loop
		}
	}
}
