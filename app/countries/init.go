package countries

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/countrylookup/internal/deps"
)

const (
	LookupKey  = "country_lookup"
	ServiceKey = "country_service"
)

// MountPublic mounts public country routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	countriesGroup := r.Group("/countries")
	countriesGroup.GET("/name/:name", handler.SearchByName)
	countriesGroup.GET("/code/:code", handler.SearchByCode)
}

// InitServices creates the lookup client and registers it with the service layer
func InitServices(container *deps.Container, cfg *Config) {
	lookup := NewClient(cfg, nil, container.Logger)
	container.RegisterService(LookupKey, lookup)
	container.RegisterService(ServiceKey, NewService(lookup, NewRenderer()))
}

// createHandler creates a handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	service := deps.MustService[Service](container, ServiceKey)
	return NewHandler(service, container.Logger)
}
