package controllers

import (
	"time"

	"github.com/shashiranjanraj/churchcafe/pkg/ctx"
	"github.com/shashiranjanraj/churchcafe/pkg/sse"
	"github.com/shashiranjanraj/churchcafe/pkg/ws"
)

const keepAlive = 25 * time.Second

// EventsController streams relay events over SSE for clients that cannot
// hold a websocket open.
type EventsController struct {
	hub *ws.Hub
}

func NewEventsController(hub *ws.Hub) *EventsController {
	return &EventsController{hub: hub}
}

// Stream handles GET /api/events. The caller joins the same rooms a
// websocket client would.
func (e *EventsController) Stream(c *ctx.Context) {
	claims, err := c.Claims()
	if err != nil {
		c.Fail(err)
		return
	}

	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	sub := e.hub.Subscribe(ws.Rooms(claims)...)
	defer sub.Close()

	if err := stream.Send(ws.ReadyEvent, map[string]any{"userId": claims.ID, "role": claims.Role}); err != nil {
		return
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-stream.Done():
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			if err := stream.SendRaw(msg.Event, msg.Data); err != nil {
				c.Log().Debug("sse: client write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}
