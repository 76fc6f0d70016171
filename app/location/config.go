package location

import (
	"strconv"
	"strings"
	"time"

	"github.com/joefazee/countrylookup/models"
)

// Config configures location resolution
type Config struct {
	Timeout       time.Duration `env:"LOCATION_TIMEOUT" env-default:"10s"`
	Authorization string        `env:"LOCATION_AUTHORIZATION" env-default:"not_determined"`
	// Latitude and Longitude are strings so "unset" is distinguishable from 0.
	Latitude         string `env:"LOCATION_LATITUDE"`
	Longitude        string `env:"LOCATION_LONGITUDE"`
	GeocoderDataDir  string `env:"LOCATION_GEOCODER_DATA_DIR"`
	GeocoderCacheDir string `env:"LOCATION_GEOCODER_CACHE_DIR"`
}

func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return models.ErrInvalidTimeout
	}
	if _, err := ParseAuthorization(c.Authorization); err != nil {
		return err
	}
	if _, err := c.Coordinate(); err != nil {
		return err
	}
	return nil
}

// Coordinate returns the configured position, or nil when none is set.
func (c *Config) Coordinate() (*Coordinate, error) {
	lat, lng := strings.TrimSpace(c.Latitude), strings.TrimSpace(c.Longitude)
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, models.ErrInvalidCoordinate
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, models.ErrInvalidCoordinate
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, models.ErrInvalidCoordinate
	}

	coord := &Coordinate{Latitude: latitude, Longitude: longitude}
	if !coord.Valid() {
		return nil, models.ErrInvalidCoordinate
	}
	return coord, nil
}

// Platform builds a StaticPlatform from the configuration. A prompt is answered
// with "granted" only when a position is configured.
func (c *Config) Platform() (*StaticPlatform, error) {
	status, err := ParseAuthorization(c.Authorization)
	if err != nil {
		return nil, err
	}
	coord, err := c.Coordinate()
	if err != nil {
		return nil, err
	}

	prompt := AuthorizationDenied
	if coord != nil {
		prompt = AuthorizationGranted
	}
	return &StaticPlatform{Status: status, Prompt: prompt, Coordinate: coord}, nil
}

// GetDefaultConfig returns a configuration that never yields a location
func GetDefaultConfig() *Config {
	return &Config{
		Timeout:       10 * time.Second,
		Authorization: AuthorizationNotDetermined.String(),
	}
}
