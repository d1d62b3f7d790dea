package services

import (
	"context"

	"github.com/shashiranjanraj/churchcafe/pkg/audit"
	"github.com/shashiranjanraj/churchcafe/pkg/event"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/reqid"
	"github.com/shashiranjanraj/churchcafe/pkg/ws"
)

// Emitter sends an event to a room.
type Emitter interface {
	Emit(room, event string, data any) (int, error)
}

// AuditRecorder receives a copy of every relayed event.
type AuditRecorder interface {
	Record(r audit.Record) bool
}

// OrderRelay fans order events out to the owner's room and the staff room.
// Failures are logged and never reach the publisher.
type OrderRelay struct {
	rooms Emitter
	audit AuditRecorder
}

func NewOrderRelay(rooms Emitter, rec AuditRecorder) *OrderRelay {
	return &OrderRelay{rooms: rooms, audit: rec}
}

// Register subscribes the relay to the order events of d.
func (r *OrderRelay) Register(d *event.Dispatcher) {
	d.Listen(EventOrderCreated, r.Handle)
	d.Listen(EventOrderStatusUpdated, r.Handle)
}

func (r *OrderRelay) Handle(ctx context.Context, e event.Event) {
	rec := audit.Record{Event: e.Name, RequestID: reqid.FromCtx(ctx)}

	var userID uint
	switch p := e.Payload.(type) {
	case OrderCreated:
		userID = p.UserID
		rec.OrderID, rec.UserID, rec.Status, rec.Total = p.ID, p.UserID, p.Status, p.Total.String()
	case OrderStatusUpdated:
		userID = p.UserID
		rec.OrderID, rec.UserID, rec.Status = p.ID, p.UserID, p.Status
	default:
		logger.WithCtx(ctx).Warn("relay: unexpected payload", "event", e.Name)
		return
	}

	if r.rooms != nil {
		for _, room := range []string{ws.StaffRoom, ws.UserRoom(userID)} {
			if _, err := r.rooms.Emit(room, e.Name, e.Payload); err != nil {
				logger.WithCtx(ctx).Error("relay: emit failed", "event", e.Name, "room", room, "error", err)
			}
		}
	}
	if r.audit != nil {
		r.audit.Record(rec)
	}
}
