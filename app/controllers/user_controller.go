package controllers

import (
	"github.com/shashiranjanraj/churchcafe/app/services"
	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

type updateSelfRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"nullable,in=admin|personal|parishioner"`
}

type updateUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role" validate:"nullable,in=admin|personal|parishioner"`
}

func (u *UserController) Me(c *ctx.Context) {
	claims, err := c.Claims()
	if err != nil {
		c.Fail(err)
		return
	}
	profile, err := u.service.Profile(c.Context(), claims.ID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(profile)
}

func (u *UserController) UpdateMe(c *ctx.Context) {
	claims, err := c.Claims()
	if err != nil {
		c.Fail(err)
		return
	}
	var body updateSelfRequest
	if !c.Bind(&body) {
		return
	}
	if err := u.service.UpdateSelf(c.Context(), claims.ID, body.Name, body.Password); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}

func (u *UserController) Index(c *ctx.Context) {
	users, err := u.service.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(users)
}

func (u *UserController) Store(c *ctx.Context) {
	var body createUserRequest
	if !c.Bind(&body) {
		return
	}
	user, err := u.service.Create(c.Context(), body.Name, body.Email, body.Password, body.Role)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(user)
}

func (u *UserController) Update(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var body updateUserRequest
	if !c.Bind(&body) {
		return
	}
	if err := u.service.Update(c.Context(), id, body.Name, body.Role); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}

func (u *UserController) Destroy(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := u.service.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}
