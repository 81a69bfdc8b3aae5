package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"foodorder/events"
	"foodorder/pkg/resp"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// OrderHub pushes order status events to the websocket connections of the
// customer and the restaurant owner involved.
type OrderHub struct {
	clients    map[uint]map[*websocket.Conn]bool // userID -> connections
	register   chan Subscription
	unregister chan Subscription
	done       chan struct{}
	mu         sync.Mutex
	bus        events.Bus
	upgrader   websocket.Upgrader
}

// Subscription is one connection of one user.
type Subscription struct {
	Conn   *websocket.Conn
	UserID uint
}

// NewOrderHub accepts upgrades from the given origins, or from any origin
// when none is given.
func NewOrderHub(bus events.Bus, origins ...string) *OrderHub {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &OrderHub{
		clients:    make(map[uint]map[*websocket.Conn]bool),
		register:   make(chan Subscription),
		unregister: make(chan Subscription),
		done:       make(chan struct{}),
		bus:        bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// Run serves register/unregister and fans bus events out until ctx ends.
// Once it returns, new connections are refused.
func (h *OrderHub) Run(ctx context.Context) error {
	defer close(h.done)
	feed, err := h.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case sub := <-h.register:
			h.mu.Lock()
			if h.clients[sub.UserID] == nil {
				h.clients[sub.UserID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.UserID][sub.Conn] = true
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[sub.UserID][sub.Conn]; ok {
				delete(h.clients[sub.UserID], sub.Conn)
				if len(h.clients[sub.UserID]) == 0 {
					delete(h.clients, sub.UserID)
				}
				sub.Conn.Close()
			}
			h.mu.Unlock()

		case ev, ok := <-feed:
			if !ok {
				h.closeAll()
				return nil
			}
			h.deliver(ev)
		}
	}
}

func (h *OrderHub) deliver(ev events.OrderEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, uid := range []uint{ev.CustomerID, ev.OwnerID} {
		if uid == 0 {
			continue
		}
		for conn := range h.clients[uid] {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				slog.Warn("ws write failed", "user", uid, "err", err)
				conn.Close()
				delete(h.clients[uid], conn)
			}
		}
		if len(h.clients[uid]) == 0 {
			delete(h.clients, uid)
		}
		if ev.CustomerID == ev.OwnerID {
			break
		}
	}
}

func (h *OrderHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, uid)
	}
}

// Connections reports how many live connections userID has.
func (h *OrderHub) Connections(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// WS route: /ws/orders
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	ident, ok := utils.CurrentIdentity(c)
	if !ok {
		resp.Unauthorized(c)
		return
	}

	select {
	case <-h.done:
		resp.Message(c, http.StatusServiceUnavailable, "live updates unavailable")
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	sub := Subscription{Conn: conn, UserID: ident.UserID}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.listen(sub)
}

// listen drains client frames so close and ping control messages are
// processed; the stream is push only.
func (h *OrderHub) listen(sub Subscription) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}()
	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
