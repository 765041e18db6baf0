package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/interface/middleware"
	"github.com/oksasatya/go-article-feed/pkg/response"
	"github.com/oksasatya/go-article-feed/pkg/validation"
)

type UserHandler struct {
	Svc           *application.UserService
	Logger        logrus.FieldLogger
	MaxImageBytes int64
}

func NewUserHandler(svc *application.UserService, logger logrus.FieldLogger, maxImageBytes int64) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, MaxImageBytes: maxImageBytes}
}

type updateProfileRequest struct {
	FirstName   string `form:"firstName" json:"firstName" binding:"omitempty,name"`
	LastName    string `form:"lastName" json:"lastName" binding:"omitempty,name"`
	Email       string `form:"email" json:"email" binding:"omitempty,email"`
	Phone       string `form:"phone" json:"phone" binding:"omitempty,phone"`
	DateOfBirth string `form:"dateOfBirth" json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

type preferencesRequest struct {
	Preferences []string `json:"preferences" binding:"required,unique,dive,category"`
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, u, "profile", nil)
}

// UpdateProfile PATCH /api/users/profile, multipart with an optional profileImage.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := readImage(c, "profileImage", h.MaxImageBytes)
	if err != nil {
		badRequest(c, err)
		return
	}
	in := application.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	if req.DateOfBirth != "" {
		in.DateOfBirth, _ = time.Parse(dateLayout, req.DateOfBirth)
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), in, img)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, u, "profile updated", nil)
}

// UpdatePassword PATCH /api/users/password
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.Svc.UpdatePassword(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.CurrentPassword, req.NewPassword, requestMeta(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"updated": true}, "password updated", nil)
}

// UpdatePreferences POST /api/users/preferences. The body is either a bare
// JSON array of categories or {"preferences": [...]}.
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	var req preferencesRequest
	if err := json.Unmarshal(raw, &req.Preferences); err != nil {
		if err := json.Unmarshal(raw, &req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := validation.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	u, err := h.Svc.UpdatePreferences(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.Preferences)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, u, "preferences updated", nil)
}
