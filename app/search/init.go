package search

import (
	"github.com/gin-gonic/gin"

	"github.com/joefazee/countrylookup/app/countries"
	"github.com/joefazee/countrylookup/app/location"
	"github.com/joefazee/countrylookup/app/reachability"
	"github.com/joefazee/countrylookup/internal/deps"
)

const (
	RegistryKey = "session_registry"
	ServiceKey  = "session_service"
)

// MountPublic mounts the session creation route
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)
	r.POST("/sessions", handler.CreateSession)
}

// MountAuthenticated mounts the routes that act on the caller's session
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)
	service := deps.MustService[Service](container, ServiceKey)

	current := r.Group("/sessions/current")
	current.Use(SessionAuth(container.TokenMaker, container.Revocations, service, false))
	current.GET("", handler.GetSession)
	current.DELETE("", handler.CloseSession)
	current.PUT("/query", handler.SetQuery)
	current.POST("/favorites", handler.AddFavorite)
	current.DELETE("/favorites/:index", handler.RemoveFavorite)
	current.POST("/alert/dismiss", handler.DismissAlert)
	current.PUT("/location", handler.ReportLocation)

	events := r.Group("/sessions/current/events")
	events.Use(SessionAuth(container.TokenMaker, container.Revocations, service, true))
	events.GET("", handler.Events)
}

// InitServices builds the session registry. Every session shares the country
// lookup, the geocoder and the process wide reachability monitor.
func InitServices(container *deps.Container, cfg *Config, locationCfg *location.Config, network reachability.Status) *Registry {
	lookup := deps.MustService[countries.Lookup](container, countries.LookupKey)
	geocoder := location.NewGeobedGeocoder(locationCfg.GeocoderDataDir, locationCfg.GeocoderCacheDir)

	factory := func(platform location.Platform) *Coordinator {
		resolver := location.NewResolver(platform, geocoder, locationCfg.Timeout, container.Logger)
		return NewCoordinator(lookup, resolver, network, cfg, WithLogger(container.Logger))
	}

	registry := NewRegistry(factory, cfg, container.Logger)
	container.RegisterService(RegistryKey, registry)
	container.RegisterService(ServiceKey, NewService(registry, container.TokenMaker, container.Revocations, cfg.SessionTokenTTL, container.Logger))
	return registry
}

func createHandler(container *deps.Container) *Handler {
	service := deps.MustService[Service](container, ServiceKey)
	return NewHandler(service, container.Sanitizer, container.Logger)
}
