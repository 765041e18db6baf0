package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/pkg/helpers"
	"github.com/oksasatya/go-article-feed/pkg/response"
	"github.com/oksasatya/go-article-feed/pkg/validation"
)

// badRequest answers 400 with field details from a binding or validation error.
func badRequest(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, logger logrus.FieldLogger, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Fail(c, http.StatusBadRequest, err.Error(), map[string]string{"email": "is already registered"})
	case errors.Is(err, application.ErrPhoneTaken):
		response.Fail(c, http.StatusBadRequest, err.Error(), map[string]string{"phone": "is already registered"})
	case errors.Is(err, application.ErrIncorrectPassword):
		response.Fail(c, http.StatusBadRequest, err.Error(), map[string]string{"currentPassword": "is incorrect"})
	case errors.Is(err, application.ErrPasswordRequired):
		response.Fail(c, http.StatusBadRequest, err.Error(), map[string]string{"password": "is required"})
	case errors.Is(err, application.ErrUserExists),
		errors.Is(err, application.ErrInvalidCategory),
		errors.Is(err, application.ErrInvalidReaction),
		errors.Is(err, helpers.ErrPasswordTooLong):
		response.Fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrArticleNotFound):
		response.Fail(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrForbidden):
		response.Fail(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, application.ErrSearchUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
		response.Fail(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

func requestMeta(c *gin.Context) application.RequestMeta {
	ip := c.GetString("real_ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	return application.RequestMeta{IP: ip, UserAgent: c.GetHeader("User-Agent")}
}
