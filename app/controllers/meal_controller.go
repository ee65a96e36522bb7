package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/services"
	"github.com/shashiranjanraj/foodmate/pkg/ctx"
)

type MealController struct {
	service *services.MealService
}

func NewMealController(service *services.MealService) *MealController {
	return &MealController{service: service}
}

// Index lists meals: ?page (zero-based), ?limit, ?search.
func (mc *MealController) Index(c *ctx.Context) {
	page := c.QueryInt("page", 0)
	limit := c.QueryInt("limit", services.DefaultPageSize)
	meals, err := mc.service.Search(c.Context(), page, limit, c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(meals)
}

func (mc *MealController) Count(c *ctx.Context) {
	n, err := mc.service.Count(c.Context(), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]int64{"count": n})
}

func (mc *MealController) Show(c *ctx.Context) {
	m, err := mc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(m)
}

func (mc *MealController) ByChef(c *ctx.Context) {
	meals, err := mc.service.ListByChef(c.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(meals)
}

// Store keeps the whole submitted document so fields the catalog does
// not interpret survive.
func (mc *MealController) Store(c *ctx.Context) {
	var raw bson.M
	if !c.DecodeJSON(&raw) {
		return
	}
	if raw == nil {
		c.Error(http.StatusBadRequest, "meal document is required")
		return
	}
	id, err := mc.service.Create(c.Context(), caller(c), raw)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(services.InsertResult{InsertedID: id})
}

func (mc *MealController) Update(c *ctx.Context) {
	var patch models.MealPatch
	if !c.BindJSON(&patch) {
		return
	}
	res, err := mc.service.Update(c.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

func (mc *MealController) Destroy(c *ctx.Context) {
	res, err := mc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}
