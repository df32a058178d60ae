package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/ctx"
	"gorm.io/gorm"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{service: services.NewAuthService(db)}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(cc *ctx.Context) {
	var in loginInput
	if !cc.BindJSON(&in) {
		return
	}
	if errs := cc.Validate(&in); len(errs) > 0 {
		cc.ValidationError(errs)
		return
	}

	pair, err := c.service.Login(in.Email, in.Password)
	if err != nil {
		if err == services.ErrInvalidCredentials {
			cc.Unauthorized("Invalid credentials")
			return
		}
		cc.Error(http.StatusInternalServerError, "login failed")
		return
	}
	cc.Success(pair)
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (c *AuthController) Refresh(cc *ctx.Context) {
	var in refreshInput
	if !cc.BindJSON(&in) {
		return
	}

	pair, err := c.service.Refresh(in.RefreshToken)
	if err != nil {
		cc.Unauthorized("Invalid refresh token")
		return
	}
	cc.Success(pair)
}
