package controllers

import (
	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (uc *UserController) Index(c *ctx.Context) {
	users, err := uc.service.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(users)
}

// Profile answers null for an unknown email.
func (uc *UserController) Profile(c *ctx.Context) {
	u, err := uc.service.Profile(c.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

// profileInput accepts photoURL, the name older clients send, for photo.
type profileInput struct {
	Name     *string `json:"name"`
	Photo    *string `json:"photo"`
	PhotoURL *string `json:"photoURL"`
	Address  *string `json:"address"`
}

func (uc *UserController) UpdateProfile(c *ctx.Context) {
	var in profileInput
	if !c.BindJSON(&in) {
		return
	}
	patch := models.ProfilePatch{Name: in.Name, Photo: in.Photo, Address: in.Address}
	if patch.Photo == nil {
		patch.Photo = in.PhotoURL
	}
	res, err := uc.service.UpdateProfile(c.Context(), caller(c), c.Param("email"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (uc *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.service.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

type roleRequestInput struct {
	Email         string      `json:"email" validate:"required,email"`
	RequestedRole models.Role `json:"requestedRole" validate:"required"`
}

func (uc *UserController) RequestRole(c *ctx.Context) {
	var in roleRequestInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.service.RequestRole(c.Context(), caller(c), in.Email, in.RequestedRole)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

type grantInput struct {
	Role models.Role `json:"role" validate:"required"`
}

// GrantRole takes the user id in the subject slot of /users/admin/{subject}.
func (uc *UserController) GrantRole(c *ctx.Context) {
	var in grantInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.service.GrantRole(c.Context(), c.Param("subject"), in.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

// IsAdmin takes the email in the subject slot of /users/admin/{subject}.
func (uc *UserController) IsAdmin(c *ctx.Context) {
	ok, err := uc.service.IsAdmin(c.Context(), caller(c), c.Param("subject"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]bool{"isAdmin": ok})
}

func (uc *UserController) IsChef(c *ctx.Context) {
	ok, err := uc.service.IsChef(c.Context(), caller(c), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]bool{"isChef": ok})
}
