package search

import (
	"strings"
	"time"

	"github.com/joefazee/countrylookup/internal/validator"
	"github.com/joefazee/countrylookup/models"
)

// Config configures the search coordinator and the session API built on it
type Config struct {
	Debounce           time.Duration `env:"SEARCH_DEBOUNCE" env-default:"500ms"`
	MaxFavorites       int           `env:"SEARCH_MAX_FAVORITES" env-default:"5"`
	DefaultCountryCode string        `env:"DEFAULT_COUNTRY_CODE" env-default:"EG"`

	SessionSymmetricKey string        `env:"SESSION_SYMMETRIC_KEY"`
	SessionTokenTTL     time.Duration `env:"SESSION_TOKEN_TTL" env-default:"24h"`
	SessionIdleTTL      time.Duration `env:"SESSION_IDLE_TTL" env-default:"30m"`
	MaxSessions         int           `env:"SESSION_MAX" env-default:"1000"`
}

func (c *Config) Validate() error {
	if c.Debounce <= 0 {
		return models.ErrInvalidDebounce
	}
	if c.MaxFavorites <= 0 {
		return models.ErrInvalidFavoritesLimit
	}
	if !validator.IsCountryCode(strings.TrimSpace(c.DefaultCountryCode)) {
		return models.ErrInvalidCountryCode
	}
	if c.SessionTokenTTL <= 0 || c.SessionIdleTTL < 0 {
		return models.ErrInvalidTimeout
	}
	return nil
}

func GetDefaultConfig() *Config {
	return &Config{
		Debounce:           500 * time.Millisecond,
		MaxFavorites:       5,
		DefaultCountryCode: "EG",
		SessionTokenTTL:    24 * time.Hour,
		SessionIdleTTL:     30 * time.Minute,
		MaxSessions:        1000,
	}
}
