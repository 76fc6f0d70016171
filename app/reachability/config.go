package reachability

import (
	"time"

	"github.com/joefazee/countrylookup/models"
)

const (
	ProbeInterface = "interface"
	ProbeDial      = "dial"
)

// Config configures network reachability probing
type Config struct {
	Interval time.Duration `env:"REACHABILITY_INTERVAL" env-default:"2s"`
	Probe    string        `env:"REACHABILITY_PROBE" env-default:"interface"`
	DialAddr string        `env:"REACHABILITY_DIAL_ADDR" env-default:"restcountries.com:443"`
	// DialTimeout bounds a single dial probe.
	DialTimeout time.Duration `env:"REACHABILITY_DIAL_TIMEOUT" env-default:"1s"`
}

func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return models.ErrInvalidProbeInterval
	}
	switch c.Probe {
	case ProbeInterface:
	case ProbeDial:
		if c.DialAddr == "" || c.DialTimeout <= 0 {
			return models.ErrInvalidProbe
		}
	default:
		return models.ErrInvalidProbe
	}
	return nil
}

// Observer builds the configured probe
func (c *Config) Observer() (Observer, error) {
	switch c.Probe {
	case ProbeInterface:
		return NewInterfaceObserver(), nil
	case ProbeDial:
		return NewDialObserver(c.DialAddr, c.DialTimeout), nil
	default:
		return nil, models.ErrInvalidProbe
	}
}

func GetDefaultConfig() *Config {
	return &Config{
		Interval:    2 * time.Second,
		Probe:       ProbeInterface,
		DialAddr:    "restcountries.com:443",
		DialTimeout: time.Second,
	}
}
