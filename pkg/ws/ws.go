package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/churchcafe/pkg/auth"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
	"github.com/shashiranjanraj/churchcafe/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// ReadyEvent is sent to a client right after it joins its rooms.
const ReadyEvent = "socket:ready"

// Verifier is satisfied by *auth.Signer.
type Verifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Rooms lists the rooms a principal joins: its own user room, plus the
// staff room for admin and personal.
func Rooms(c *auth.Claims) []string {
	rooms := []string{UserRoom(c.ID)}
	if c.IsStaff() {
		rooms = append(rooms, StaffRoom)
	}
	return rooms
}

// Handler authenticates the bearer token (Authorization header or ?token=),
// upgrades the connection and subscribes it to the principal's rooms.
func (h *Hub) Handler(v Verifier, allowedOrigins []string) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.RequestToken(r)
		if err != nil {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			response.Unauthorized(w, "Unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WithCtx(r.Context()).Warn("ws: upgrade failed", "error", err)
			return
		}

		sub := h.Subscribe(Rooms(claims)...)
		ready, _ := Message{Event: ReadyEvent, Data: mustJSON(map[string]any{
			"userId": claims.ID,
			"role":   claims.Role,
		})}.Frame()

		go writePump(conn, sub, ready)
		go readPump(conn, sub)
	})
}

// readPump discards client frames; it exists to process pongs and to
// notice the connection closing.
func readPump(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscriber, greeting []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.Close()
		conn.Close()
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, greeting); err != nil {
		return
	}

	for {
		select {
		case msg, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := msg.Frame()
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
