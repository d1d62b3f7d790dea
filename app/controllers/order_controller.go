package controllers

import (
	"encoding/json"

	"github.com/shashiranjanraj/churchcafe/app/services"
	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type createOrderRequest struct {
	Items json.RawMessage `json:"items"`
}

type statusRequest struct {
	Status string `json:"status"`
}

// Store handles POST /api/orders.
func (o *OrderController) Store(c *ctx.Context) {
	claims, err := c.Claims()
	if err != nil {
		c.Fail(err)
		return
	}
	var body createOrderRequest
	if !c.Bind(&body) {
		return
	}
	lines, err := services.ParseCart(body.Items)
	if err != nil {
		c.Fail(err)
		return
	}
	receipt, err := o.orders.Create(c.Context(), claims.ID, lines)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(receipt)
}

func (o *OrderController) Mine(c *ctx.Context) {
	claims, err := c.Claims()
	if err != nil {
		c.Fail(err)
		return
	}
	list, err := o.orders.ListForUser(c.Context(), claims.ID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(list)
}

func (o *OrderController) Show(c *ctx.Context) {
	claims, err := c.Claims()
	if err != nil {
		c.Fail(err)
		return
	}
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	order, err := o.orders.Get(c.Context(), claims, id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(order)
}

func (o *OrderController) Index(c *ctx.Context) {
	list, err := o.orders.ListAll(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.OK(list)
}

// UpdateStatus handles PUT /api/orders/{id}/status.
func (o *OrderController) UpdateStatus(c *ctx.Context) {
	id, err := c.ParamID("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var body statusRequest
	if !c.Bind(&body) {
		return
	}
	if err := o.orders.UpdateStatus(c.Context(), id, body.Status); err != nil {
		c.Fail(err)
		return
	}
	c.OK(success)
}
