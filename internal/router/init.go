package router

import (
	"github.com/oksasatya/go-article-feed/internal/container"
	handlers "github.com/oksasatya/go-article-feed/internal/interface/http"
	"github.com/oksasatya/go-article-feed/internal/router/modules"
)

// InitModules builds the handlers from the container and registers every
// feature module on the registry. Call once during startup.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	authHandler := handlers.NewAuthHandler(c.Auth, c.Logger)
	userHandler := handlers.NewUserHandler(c.Users, c.Logger, cfg.MaxImageBytes)
	articleHandler := handlers.NewArticleHandler(c.Articles, c.Logger, cfg.MaxImageBytes)

	r.Add(modules.NewAuthModule(authHandler, c.Redis))
	r.Add(modules.NewUserModule(userHandler, c.JWT, c.Redis))
	r.Add(modules.NewArticleModule(articleHandler, c.JWT, c.Users, c.Redis))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
