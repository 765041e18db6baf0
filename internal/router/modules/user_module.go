package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-article-feed/internal/interface/http"
	"github.com/oksasatya/go-article-feed/internal/interface/middleware"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
)

// UserModule serves the account endpoints under /users. All of them need a token.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.Use(
		middleware.Authenticate(m.JWT),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	passwordLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)

	g.GET("/me", m.Handler.Me)
	g.PATCH("/profile", m.Handler.UpdateProfile)
	g.PATCH("/password", passwordLimiter, m.Handler.UpdatePassword)
	g.POST("/preferences", m.Handler.UpdatePreferences)
}
