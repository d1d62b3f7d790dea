package controllers

import (
	"github.com/shashiranjanraj/churchcafe/app/services"
	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /api/auth/register.
func (a *AuthController) Register(c *ctx.Context) {
	var body registerRequest
	if !c.Bind(&body) {
		return
	}
	result, err := a.service.Register(c.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(result)
}

// Login handles POST /api/auth/login.
func (a *AuthController) Login(c *ctx.Context) {
	var body loginRequest
	if !c.Bind(&body) {
		return
	}
	result, err := a.service.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(result)
}
