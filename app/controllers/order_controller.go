package controllers

import (
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Index lists the buyer's orders: ?email must be the caller.
func (oc *OrderController) Index(c *ctx.Context) {
	orders, err := oc.service.ListForBuyer(c.Context(), caller(c), c.Query("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) Show(c *ctx.Context) {
	o, err := oc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(o)
}

func (oc *OrderController) ByChef(c *ctx.Context) {
	orders, err := oc.service.ListForChef(c.Context(), caller(c), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(orders)
}

func (oc *OrderController) Store(c *ctx.Context) {
	var in services.OrderInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := oc.service.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

type statusInput struct {
	Status string `json:"status" validate:"required"`
}

func (oc *OrderController) UpdateStatus(c *ctx.Context) {
	var in statusInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := oc.service.SetStatus(c.Context(), c.Param("id"), in.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (oc *OrderController) Destroy(c *ctx.Context) {
	res, err := oc.service.Delete(c.Context(), caller(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}
