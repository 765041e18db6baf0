package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/pkg/response"
)

const dateLayout = "2006-01-02"

type AuthHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	FirstName   string   `json:"firstName" binding:"required,name"`
	LastName    string   `json:"lastName" binding:"required,name"`
	Email       string   `json:"email" binding:"required,email"`
	Phone       string   `json:"phone" binding:"required,phone"`
	Password    string   `json:"password" binding:"required,pwd"`
	DateOfBirth string   `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	Preferences []string `json:"preferences" binding:"omitempty,unique,dive,category"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// authPayload is the body of a successful register or login.
type authPayload struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	dob, _ := time.Parse(dateLayout, req.DateOfBirth)

	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		DateOfBirth: dob,
		Preferences: req.Preferences,
	}, requestMeta(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, authPayload{User: res.User, Token: res.Token}, "user registered", gin.H{"expires_at": res.ExpiresAt})
}

// Login POST /api/auth/login with an email or phone as identifier.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Identifier, req.Password, requestMeta(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, authPayload{User: res.User, Token: res.Token}, "login successful", gin.H{"expires_at": res.ExpiresAt})
}
