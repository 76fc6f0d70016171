package app

import (
	"time"

	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/app/reachability"
	"github.com/joefazee/countrylookup/app/search"
	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/nexus"
)

type Config struct {
	Countries    countries.Config
	Search       search.Config
	Location     location.Config
	Reachability reachability.Config
	Cache        CacheConfig

	AppHost  string `env:"APP_HOST" env-default:"localhost"`
	AppPort  string `env:"APP_PORT" env-default:"8080" validate:"required,numeric"`
	Env      string `env:"APP_ENV" env-default:"development" validate:"oneof=development test staging production"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

// CacheConfig selects the backend of the token revocation list
type CacheConfig struct {
	Backend       string        `env:"CACHE_BACKEND" env-default:"memory" validate:"oneof=memory redis"`
	RedisAddr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0" validate:"gte=0"`
	RedisPoolSize int           `env:"REDIS_POOL_SIZE" env-default:"10"`
	RedisTimeout  time.Duration `env:"REDIS_TIMEOUT" env-default:"50ms"`
}

// RedisOptions returns nil for the memory backend
func (c *CacheConfig) RedisOptions() *cache.RedisOptions {
	if c.Backend != cache.RedisBackend {
		return nil
	}
	return &cache.RedisOptions{
		Addr:      c.RedisAddr,
		Password:  c.RedisPassword,
		DB:        c.RedisDB,
		PoolSize:  c.RedisPoolSize,
		OpTimeout: c.RedisTimeout,
		KeyPrefix: "countrylookup:",
	}
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig(opts ...nexus.LoaderOption) (*Config, error) {
	c := &Config{}
	err := nexus.NewLoader(opts...).Load(c)
	return c, err
}
