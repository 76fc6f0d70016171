package router

import (
	"github.com/gin-gonic/gin"

	"github.com/joefazee/countrylookup/internal/deps"
)

const APIPrefix = "/api/v1"

// MountFunc represents a function that mounts routes for a module
type MountFunc func(*gin.RouterGroup, *deps.Container)

type Mounter struct {
	container *deps.Container
}

func NewMounter(container *deps.Container) *Mounter {
	return &Mounter{container: container}
}

// Public routes - no session required
func (m *Mounter) Public(engine *gin.Engine) *RouteGroup {
	return &RouteGroup{group: engine.Group(APIPrefix), container: m.container}
}

// Authenticated routes - modules attach their own session middleware per group
func (m *Mounter) Authenticated(engine *gin.Engine) *RouteGroup {
	return &RouteGroup{group: engine.Group(APIPrefix), container: m.container}
}

type RouteGroup struct {
	group     *gin.RouterGroup
	container *deps.Container
}

// Mount provides a fluent interface for mounting modules
func (rg *RouteGroup) Mount(mountFuncs ...MountFunc) *RouteGroup {
	for _, mount := range mountFuncs {
		mount(rg.group, rg.container)
	}
	return rg
}

// Group creates a sub-group for organizing routes
func (rg *RouteGroup) Group(path string) *RouteGroup {
	return &RouteGroup{group: rg.group.Group(path), container: rg.container}
}

// Use adds middleware to every route mounted after it
func (rg *RouteGroup) Use(middleware ...gin.HandlerFunc) *RouteGroup {
	rg.group.Use(middleware...)
	return rg
}

// Handle registers a single handler without a module
func (rg *RouteGroup) Handle(method, path string, handler gin.HandlerFunc) *RouteGroup {
	rg.group.Handle(method, path, handler)
	return rg
}
