package controllers

import (
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// IssueCredential exchanges an identity claim for a bearer token.
func (ac *AuthController) IssueCredential(c *ctx.Context) {
	var in services.CredentialInput
	if !c.BindJSON(&in) {
		return
	}
	token, err := ac.service.IssueCredential(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"token": token})
}
