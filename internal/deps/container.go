package deps

import (
	"github.com/joefazee/countrylookup/internal/cache"
	"github.com/joefazee/countrylookup/internal/logger"
	"github.com/joefazee/countrylookup/internal/sanitizer"
	"github.com/joefazee/countrylookup/internal/security"
)

// Container holds all shared dependencies
type Container struct {
	TokenMaker  security.Maker
	Sanitizer   sanitizer.HTMLStripperer
	Logger      logger.Logger
	Revocations *cache.Revocations

	// Store services as interfaces to avoid imports between modules
	services map[string]interface{}
}

func NewContainer(tokenMaker security.Maker, sanitizer sanitizer.HTMLStripperer, logger logger.Logger, revocations *cache.Revocations) *Container {
	return &Container{
		TokenMaker:  tokenMaker,
		Sanitizer:   sanitizer,
		Logger:      logger,
		Revocations: revocations,
		services:    make(map[string]interface{}),
	}
}

// RegisterService stores a service with a key
func (c *Container) RegisterService(key string, service interface{}) {
	c.services[key] = service
}

// GetService retrieves a service by key
func (c *Container) GetService(key string) interface{} {
	return c.services[key]
}

// MustService retrieves a service by key and panics when it was never registered.
func MustService[T any](c *Container, key string) T {
	svc, ok := c.services[key].(T)
	if !ok {
		panic("deps: service " + key + " is not registered")
	}
	return svc
}
