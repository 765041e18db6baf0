package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-article-feed/internal/interface/http"
	"github.com/oksasatya/go-article-feed/internal/interface/middleware"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

// ArticleModule serves /articles. Every route needs a token; the feed and
// author listings also reload the user.
type ArticleModule struct {
	Handler *handlers.ArticleHandler
	JWT     *helpers.JWTManager
	Users   middleware.UserLoader
	Redis   *redis.Client
}

func NewArticleModule(h *handlers.ArticleHandler, jwt *helpers.JWTManager, users middleware.UserLoader, rdb *redis.Client) *ArticleModule {
	return &ArticleModule{Handler: h, JWT: jwt, Users: users, Redis: rdb}
}

func (m *ArticleModule) Register(rg *gin.RouterGroup) {
	protect := middleware.Protect(m.Users)

	g := rg.Group("/articles")
	g.Use(
		middleware.Authenticate(m.JWT),
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByUserID(), nil),
	)
	searchLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByUserID(), nil)

	g.GET("/feed", protect, m.Handler.Feed)
	g.GET("/search", searchLimiter, m.Handler.Search)
	g.GET("/author/:authorId", protect, m.Handler.ListByAuthor)
	g.POST("", m.Handler.Create)
	g.GET("/:id", m.Handler.Get)
	g.PATCH("/:id", m.Handler.Update)
	g.DELETE("/:id", m.Handler.Delete)
	g.POST("/:id/reactions", m.Handler.AddReaction)
	g.DELETE("/:id/reactions", m.Handler.RemoveReaction)
}
