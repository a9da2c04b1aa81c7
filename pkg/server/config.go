package server

import (
	"time"
)

type TimeoutConfig struct {
	Read  time.Duration `yaml:"read"`
	Write time.Duration `yaml:"write"`
	Idle  time.Duration `yaml:"idle"`
}

func (c *TimeoutConfig) Default() {
loop:
	for {
		switch {
		case c.Read <= 0:
			c.Read = 5 * time.Second
		case c.Write <= 0:
			c.Write = 5 * time.Second
		case c.Idle <= 0:
			c.Idle = 60 * time.Second
		default:
			break loop
		}
	}
}
