package nexus

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTooShort = errors.New("name too short")

type moduleConfig struct {
	Name string `env:"NEXUS_TEST_NAME" env-default:"lookup" yaml:"name"`
}

func (m *moduleConfig) Validate() error {
	if len(m.Name) < 3 {
		return errTooShort
	}
	return nil
}

type testConfig struct {
	Module  moduleConfig
	Port    int           `env:"NEXUS_TEST_PORT" env-default:"8080" yaml:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `env:"NEXUS_TEST_TIMEOUT" env-default:"1s" yaml:"timeout"`
	APIKey  string        `env:"NEXUS_TEST_API_KEY" yaml:"api_key"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Defaults(t *testing.T) {
	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithOnlyEnvironment()).Load(cfg))

	assert.Equal(t, "lookup", cfg.Module.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestLoader_Environment(t *testing.T) {
	t.Setenv("NEXUS_TEST_PORT", "9000")
	t.Setenv("NEXUS_TEST_NAME", "countries")

	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithOnlyEnvironment()).Load(cfg))

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "countries", cfg.Module.Name)
}

func TestLoader_RejectsNonStruct(t *testing.T) {
	var port int
	err := NewLoader(WithOnlyEnvironment()).Load(&port)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeInvalidType, cfgErr.Code)
}

func TestLoader_TagValidation(t *testing.T) {
	t.Setenv("NEXUS_TEST_PORT", "70000")

	err := NewLoader(WithOnlyEnvironment()).Load(&testConfig{})

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeValidation, cfgErr.Code)
}

func TestLoader_NestedValidation(t *testing.T) {
	t.Setenv("NEXUS_TEST_NAME", "eg")

	err := NewLoader(WithOnlyEnvironment()).Load(&testConfig{})

	assert.ErrorIs(t, err, errTooShort)
	assert.Contains(t, err.Error(), ErrCodeValidation)
}

func TestLoader_SecurityCheck(t *testing.T) {
	t.Setenv("NEXUS_TEST_API_KEY", "changeme")

	err := NewLoader(WithOnlyEnvironment()).Load(&testConfig{})

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeSecurityCheck, cfgErr.Code)
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", "port: 7070\ntimeout: 3s\n")

	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithFileName(path)).Load(cfg))

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "lookup", cfg.Module.Name)
}

func TestLoader_MissingFile(t *testing.T) {
	err := NewLoader(WithFileName(filepath.Join(t.TempDir(), "missing.yaml"))).Load(&testConfig{})

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeFileNotFound, cfgErr.Code)
	assert.Contains(t, cfgErr.Error(), "missing.yaml")
}

func TestLoader_DefaultFileOnlyWhenPresent(t *testing.T) {
	cfg := &testConfig{}
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	require.NoError(t, NewLoader(WithDefaultFileName(missing), WithFileFlag("")).Load(cfg))
	assert.Equal(t, 8080, cfg.Port)

	present := writeFile(t, "present.yaml", "port: 6060\n")
	require.NoError(t, NewLoader(WithDefaultFileName(present), WithFileFlag("")).Load(cfg))
	assert.Equal(t, 6060, cfg.Port)
}

func TestLoader_FileFlag(t *testing.T) {
	path := writeFile(t, "flagged.yaml", "port: 5050\n")
	fs := flag.CommandLine
	name := "nexus-test-config"
	if fs.Lookup(name) == nil {
		fs.String(name, "", "config file")
	}
	require.NoError(t, fs.Set(name, path))
	t.Cleanup(func() { _ = fs.Set(name, "") })

	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithFileFlag(name)).Load(cfg))

	assert.Equal(t, 5050, cfg.Port)
}

func TestLoader_SourcesByPriority(t *testing.T) {
	low := NewFileSource(writeFile(t, "low.yaml", "port: 1111\n"), 1)
	high := NewFileSource(writeFile(t, "high.yaml", "port: 2222\n"), 10)

	cfg := &testConfig{}
	require.NoError(t, NewLoader(WithOnlyEnvironment(), WithSources(low, high)).Load(cfg))

	// lower priority loads last and wins
	assert.Equal(t, 1111, cfg.Port)
	assert.Contains(t, low.Name(), "low.yaml")
}

func TestLoader_SourceFailure(t *testing.T) {
	broken := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml"), 1)

	err := NewLoader(WithOnlyEnvironment(), WithSources(broken)).Load(&testConfig{})

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ErrCodeSourceFailed, cfgErr.Code)
}

type validatorFunc func(ctx context.Context, cfg interface{}) error

func (f validatorFunc) Validate(ctx context.Context, cfg interface{}) error { return f(ctx, cfg) }

type securityFunc func(ctx context.Context, cfg interface{}) error

func (f securityFunc) CheckSecurity(ctx context.Context, cfg interface{}) error { return f(ctx, cfg) }

func TestLoader_CustomValidatorAndChecker(t *testing.T) {
	t.Setenv("NEXUS_TEST_API_KEY", "changeme")
	var validated, checked bool

	err := NewLoader(
		WithOnlyEnvironment(),
		WithValidator(validatorFunc(func(context.Context, interface{}) error { validated = true; return nil })),
		WithSecurityChecker(securityFunc(func(context.Context, interface{}) error { checked = true; return nil })),
	).Load(&testConfig{})

	require.NoError(t, err)
	assert.True(t, validated)
	assert.True(t, checked)
}

func TestLoader_Timeout(t *testing.T) {
	slow := NewFileSource(writeFile(t, "slow.yaml", "port: 1\n"), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLoader(WithOnlyEnvironment(), WithTimeout(time.Second), WithSources(slow)).LoadWithContext(ctx, &testConfig{})

	assert.ErrorIs(t, err, context.Canceled)
}
