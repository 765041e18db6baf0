package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
	"github.com/oksasatya/go-article-feed/pkg/response"
)

// Gin context keys set by the auth middlewares.
const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxUserKey      = "user"
)

// UserLoader resolves the user a token was issued for.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// Authenticate validates the bearer token and trusts its claims.
// It sets userID and userEmail in the Gin context on success.
func Authenticate(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, "not authorized, no token", nil)
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "not authorized, token failed", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}

// Protect reloads the authenticated user and stores it under "user".
// It must run after Authenticate.
func Protect(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			response.Fail(c, http.StatusUnauthorized, "not authorized", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, application.ErrUserNotFound) {
				response.Fail(c, http.StatusUnauthorized, "not authorized, user not found", nil)
				return
			}
			response.Fail(c, http.StatusInternalServerError, "failed to load user", err.Error())
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the user stored by Protect.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
