package controllers

import (
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

func (pc *PaymentController) CreateIntent(c *ctx.Context) {
	var in services.IntentInput
	if !c.BindJSON(&in) {
		return
	}
	secret, err := pc.service.CreateIntent(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]string{"clientSecret": secret})
}

func (pc *PaymentController) Store(c *ctx.Context) {
	var in services.PaymentInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := pc.service.Record(c.Context(), caller(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (pc *PaymentController) ByEmail(c *ctx.Context) {
	payments, err := pc.service.ListForUser(c.Context(), caller(c), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(payments)
}

func (pc *PaymentController) Index(c *ctx.Context) {
	payments, err := pc.service.ListAll(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(payments)
}
