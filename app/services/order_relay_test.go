package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/churchcafe/pkg/audit"
	"github.com/shashiranjanraj/churchcafe/pkg/event"
	"github.com/shashiranjanraj/churchcafe/pkg/ws"
)

type emitted struct {
	room, event string
	data        any
}

type fakeRooms struct {
	sent []emitted
	fail string
}

func (f *fakeRooms) Emit(room, name string, data any) (int, error) {
	if room == f.fail {
		return 0, errors.New("room closed")
	}
	f.sent = append(f.sent, emitted{room, name, data})
	return 1, nil
}

// statusLog records, per room, the statuses announced for each order.
type statusLog struct {
	mu   sync.Mutex
	seen map[string]map[uint][]string
}

func (l *statusLog) Emit(room, _ string, data any) (int, error) {
	u, ok := data.(OrderStatusUpdated)
	if !ok {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[room] == nil {
		l.seen[room] = map[uint][]string{}
	}
	l.seen[room][u.ID] = append(l.seen[room][u.ID], u.Status)
	return 1, nil
}

type fakeAudit struct{ records []audit.Record }

func (f *fakeAudit) Record(r audit.Record) bool {
	f.records = append(f.records, r)
	return true
}

func TestRelayFansOutToOwnerAndStaff(t *testing.T) {
	rooms := &fakeRooms{}
	rec := &fakeAudit{}
	d := event.NewDispatcher(0)
	NewOrderRelay(rooms, rec).Register(d)

	created := OrderCreated{ID: 4, UserID: 9, Total: dec("12.50"), Status: "pending"}
	d.Dispatch(context.Background(), EventOrderCreated, created)
	d.Dispatch(context.Background(), EventOrderStatusUpdated, OrderStatusUpdated{ID: 4, UserID: 9, Status: "ready"})

	require.Len(t, rooms.sent, 4)
	assert.Equal(t, emitted{ws.StaffRoom, EventOrderCreated, created}, rooms.sent[0])
	assert.Equal(t, ws.UserRoom(9), rooms.sent[1].room)
	assert.Equal(t, EventOrderStatusUpdated, rooms.sent[2].event)
	assert.Equal(t, ws.UserRoom(9), rooms.sent[3].room)

	require.Len(t, rec.records, 2)
	assert.Equal(t, audit.Record{Event: EventOrderCreated, OrderID: 4, UserID: 9, Status: "pending", Total: "12.5"}, rec.records[0])
	assert.Equal(t, "ready", rec.records[1].Status)
	assert.Empty(t, rec.records[1].Total)
}

func TestRelaySurvivesEmitFailures(t *testing.T) {
	rooms := &fakeRooms{fail: ws.StaffRoom}
	rec := &fakeAudit{}
	relay := NewOrderRelay(rooms, rec)

	relay.Handle(context.Background(), event.Event{Name: EventOrderStatusUpdated, Payload: OrderStatusUpdated{ID: 1, UserID: 2, Status: "completed"}})

	require.Len(t, rooms.sent, 1)
	assert.Equal(t, ws.UserRoom(2), rooms.sent[0].room)
	assert.Len(t, rec.records, 1)
}

func TestRelayIgnoresUnknownPayloads(t *testing.T) {
	rooms := &fakeRooms{}
	relay := NewOrderRelay(rooms, nil)

	relay.Handle(context.Background(), event.Event{Name: EventOrderCreated, Payload: "nope"})
	assert.Empty(t, rooms.sent)
}

func TestRelayKeepsEachOrdersStatusesInOrder(t *testing.T) {
	log := &statusLog{seen: map[string]map[uint][]string{}}
	d := event.NewDispatcher(4)
	NewOrderRelay(log, nil).Register(d)

	steps := []string{"preparing", "ready", "completed"}
	const orders = 40
	for round := 0; round < 5; round++ {
		for _, status := range steps {
			for id := uint(1); id <= orders; id++ {
				d.Dispatch(context.Background(), EventOrderStatusUpdated, OrderStatusUpdated{ID: id, UserID: 7, Status: status})
			}
		}
	}
	d.Close()

	want := make([]string, 0, 5*len(steps))
	for round := 0; round < 5; round++ {
		want = append(want, steps...)
	}
	for _, room := range []string{ws.StaffRoom, ws.UserRoom(7)} {
		require.Len(t, log.seen[room], orders, room)
		for id := uint(1); id <= orders; id++ {
			assert.Equal(t, want, log.seen[room][id], "%s order %d", room, id)
		}
	}
}
