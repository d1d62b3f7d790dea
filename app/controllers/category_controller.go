package controllers

import (
	"github.com/shashiranjanraj/churchcafe/app/services"
	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
)

type CategoryController struct {
	catalog *services.CatalogService
}

func NewCategoryController(catalog *services.CatalogService) *CategoryController {
	return &CategoryController{catalog: catalog}
}

func (cc *CategoryController) Index(c *ctx.Context) {
	list, err := cc.catalog.Categories(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(list)
}

func (cc *CategoryController) Show(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	category, err := cc.catalog.Category(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(category)
}

func (cc *CategoryController) Store(c *ctx.Context) {
	var body services.CategoryInput
	if !c.Bind(&body) {
		return
	}
	category, err := cc.catalog.CreateCategory(c.Context(), body)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(category)
}

func (cc *CategoryController) Update(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var body services.CategoryInput
	if !c.Bind(&body) {
		return
	}
	if err := cc.catalog.UpdateCategory(c.Context(), id, body); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}

func (cc *CategoryController) Destroy(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := cc.catalog.DeleteCategory(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.NoContent()
}
