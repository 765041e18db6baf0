package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Module is a feature area that mounts its routes on the /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects feature modules and mounts them under /api.
// Middleware added with Use applies to /api only, not to the engine.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Logger logrus.FieldLogger

	middlewares []gin.HandlerFunc
	modules     []Module
	mounted     bool
}

func NewRegistry(engine *gin.Engine, logger logrus.FieldLogger) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api"), Logger: logger}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts every module once; later calls are no-ops.
func (r *Registry) RegisterAll() {
	if r.mounted {
		return
	}
	r.mounted = true
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	if r.Logger != nil {
		r.Logger.WithFields(logrus.Fields{
			"modules": len(r.modules),
			"routes":  len(r.Engine.Routes()),
		}).Debug("routes mounted")
	}
}
