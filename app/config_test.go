package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/nexus"
	"github.com/joefazee/countrylookup/models"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(nexus.WithOnlyEnvironment())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://restcountries.com/v3.1/", cfg.Countries.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 5, cfg.Search.MaxFavorites)
	assert.Equal(t, "EG", cfg.Search.DefaultCountryCode)
	assert.Equal(t, 10*time.Second, cfg.Location.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Reachability.Interval)
	assert.Equal(t, cache.MemoryBackend, cfg.Cache.Backend)
	assert.Nil(t, cfg.Cache.RedisOptions())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE", "250ms")
	t.Setenv("SEARCH_MAX_FAVORITES", "3")
	t.Setenv("DEFAULT_COUNTRY_CODE", "FR")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")

	cfg, err := LoadConfig(nexus.WithOnlyEnvironment())
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 3, cfg.Search.MaxFavorites)
	assert.Equal(t, "FR", cfg.Search.DefaultCountryCode)

	opts := cfg.Cache.RedisOptions()
	require.NotNil(t, opts)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "countrylookup:", opts.KeyPrefix)
}

func TestLoadConfig_FileOverridesEnvironment(t *testing.T) {
	// .env files are applied through the process environment; restore it afterwards
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SEARCH_MAX_FAVORITES", "5")

	path := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\nSEARCH_MAX_FAVORITES=4\n"), 0o600))

	cfg, err := LoadConfig(nexus.WithFileName(path))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 4, cfg.Search.MaxFavorites)
	assert.Equal(t, "EG", cfg.Search.DefaultCountryCode)
}

func TestLoadConfig_ModuleValidation(t *testing.T) {
	tests := []struct {
		env   string
		value string
		err   error
	}{
		{env: "SEARCH_DEBOUNCE", value: "0s", err: models.ErrInvalidDebounce},
		{env: "SEARCH_MAX_FAVORITES", value: "0", err: models.ErrInvalidFavoritesLimit},
		{env: "COUNTRIES_BASE_URL", value: "not a url", err: models.ErrInvalidBaseURL},
		{env: "REACHABILITY_PROBE", value: "icmp", err: models.ErrInvalidProbe},
		{env: "LOCATION_AUTHORIZATION", value: "sometimes", err: models.ErrInvalidAuthorization},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			_, err := LoadConfig(nexus.WithOnlyEnvironment())

			var cfgErr *nexus.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, nexus.ErrCodeValidation, cfgErr.Code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadConfig_TagValidation(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")

	_, err := LoadConfig(nexus.WithOnlyEnvironment())

	var cfgErr *nexus.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, nexus.ErrCodeValidation, cfgErr.Code)
}
