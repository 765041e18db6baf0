package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-article-feed/internal/container"
	"github.com/oksasatya/go-article-feed/internal/interface/middleware"
	"github.com/oksasatya/go-article-feed/pkg/validation"
)

// NewEngine returns a gin engine with the global middleware and every module mounted.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins())))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}
	r.MaxMultipartMemory = cfg.MaxImageBytes + 1<<20

	reg := NewRegistry(r, c.Logger)
	reg.Use(middleware.RealIP())
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		// bearer tokens do not need credentialed CORS
		cc.AllowOrigins = nil
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	}
	return cc
}
