package countries

import (
	"time"

	"github.com/joefazee/countrylookup/internal/validator"
	"github.com/joefazee/countrylookup/models"
)

const DefaultBaseURL = "https://restcountries.com/v3.1/"

// Config holds the REST Countries client settings
type Config struct {
	BaseURL string        `env:"COUNTRIES_BASE_URL" env-default:"https://restcountries.com/v3.1/"`
	Timeout time.Duration `env:"COUNTRIES_TIMEOUT" env-default:"0s"`
}

func (c *Config) Validate() error {
	if !validator.IsURL(c.BaseURL) {
		return models.ErrInvalidBaseURL
	}
	if c.Timeout < 0 {
		return models.ErrInvalidTimeout
	}
	return nil
}

// GetDefaultConfig returns the public API endpoint with the platform default timeout
func GetDefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
	}
}
