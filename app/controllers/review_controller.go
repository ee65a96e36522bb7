package controllers

import (
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
)

type ReviewController struct {
	service *services.ReviewService
}

func NewReviewController(service *services.ReviewService) *ReviewController {
	return &ReviewController{service: service}
}

// Index lists reviews newest first, optionally ?email filtered.
func (rc *ReviewController) Index(c *ctx.Context) {
	reviews, err := rc.service.List(c.Context(), c.Query("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(reviews)
}

func (rc *ReviewController) Store(c *ctx.Context) {
	var in services.ReviewInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := rc.service.Submit(c.Context(), caller(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}
