// Package ws is the realtime relay transport: a hub of subscribers grouped
// into named rooms, served over gorilla/websocket.
//
//	hub := ws.NewHub()
//	router.Handle("/ws", "ws", hub.Handler(signer))
//
//	hub.Emit(ws.UserRoom(7), "order:created", payload)
//	hub.Emit(ws.StaffRoom, "order:created", payload)
package ws

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/metrics"
)

// StaffRoom receives every order event.
const StaffRoom = "staff"

// UserRoom is the private room of one user.
func UserRoom(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// Message is one outbound event.
type Message struct {
	Event string
	Data  json.RawMessage
}

// Frame is the JSON shape written to websocket clients.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (m Message) Frame() ([]byte, error) {
	return json.Marshal(Frame{Event: m.Event, Data: m.Data})
}

// Subscriber is one hub member. Websocket clients and SSE streams both
// read from C.
type Subscriber struct {
	hub   *Hub
	send  chan Message
	rooms []string
	once  sync.Once
}

// C delivers messages until the subscriber is closed.
func (s *Subscriber) C() <-chan Message { return s.send }

// Close leaves every room. Safe to call more than once.
func (s *Subscriber) Close() {
	s.hub.remove(s)
}

// deliver queues m without blocking; a full buffer drops m.
func (s *Subscriber) deliver(m Message) bool {
	select {
	case s.send <- m:
		return true
	default:
		return false
	}
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
	subs  map[*Subscriber]struct{}
	// buffer is the per-subscriber queue length.
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Subscriber]struct{}),
		subs:   make(map[*Subscriber]struct{}),
		buffer: 64,
	}
}

// Subscribe registers a new subscriber in the given rooms.
func (h *Hub) Subscribe(rooms ...string) *Subscriber {
	s := &Subscriber{hub: h, send: make(chan Message, h.buffer), rooms: rooms}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*Subscriber]struct{})
			h.rooms[room] = members
		}
		members[s] = struct{}{}
	}
	total := len(h.subs)
	h.mu.Unlock()

	metrics.SocketConnections.Inc()
	logger.Debug("ws: subscriber joined", "rooms", rooms, "total", total)
	return s
}

func (h *Hub) remove(s *Subscriber) {
	s.once.Do(func() {
		h.mu.Lock()
		delete(h.subs, s)
		for _, room := range s.rooms {
			if members, ok := h.rooms[room]; ok {
				delete(members, s)
				if len(members) == 0 {
					delete(h.rooms, room)
				}
			}
		}
		// closed under the lock so Emit never sends on a closed channel
		close(s.send)
		h.mu.Unlock()

		metrics.SocketConnections.Dec()
	})
}

// Emit sends event to every subscriber in room. It never blocks and returns
// the number of subscribers the message was queued for.
func (h *Hub) Emit(room, event string, data any) (int, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("ws: marshal %s: %w", event, err)
	}
	msg := Message{Event: event, Data: raw}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for s := range h.rooms[room] {
		if s.deliver(msg) {
			sent++
		} else {
			logger.Warn("ws: subscriber buffer full, message dropped", "room", room, "event", event)
		}
	}
	return sent, nil
}

// RoomSize reports how many subscribers are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		all = append(all, s)
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.Close()
	}
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
