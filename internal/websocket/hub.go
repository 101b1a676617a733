package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans ChangeEvents out to clients subscribed to the event's table.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.ChangeEvent
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *logger.Log
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	tables map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan models.ChangeEvent, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        logger.New().With(zap.String("component", "changefeed")),
	}
}

// Run serves registrations and broadcasts until ctx is done. It must be
// called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.log.With(zap.Int("clients", len(h.clients))).Debug("change feed client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.With(zap.Int("clients", len(h.clients))).Debug("change feed client disconnected")
			}

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				h.log.WithError(err).Error("failed to encode change event")
				continue
			}
			for client := range h.clients {
				if !client.tables[event.Table] {
					continue
				}
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish queues event for delivery. It never blocks the caller; events are
// dropped when the queue is full.
func (h *Hub) Publish(event models.ChangeEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.With(zap.String("table", event.Table)).Warn("change feed queue full, dropping event")
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("websocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.WithError(err).Warn("websocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ParseTables reads the comma separated ?tables= list. An empty list
// subscribes to every table.
func ParseTables(raw string) (map[string]bool, bool) {
	tables := map[string]bool{}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		switch name {
		case "":
		case models.TableProfiles, models.TableLeaderboard:
			tables[name] = true
		default:
			return nil, false
		}
	}

	if len(tables) == 0 {
		tables[models.TableProfiles] = true
		tables[models.TableLeaderboard] = true
	}
	return tables, true
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	tables, ok := ParseTables(r.URL.Query().Get("tables"))
	if !ok {
		http.Error(w, "unknown table", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), tables: tables}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// RegisterRoutes mounts the change feed at /ws behind the given middleware,
// outermost first. The hub must already be running.
func RegisterRoutes(r *mux.Router, hub *Hub, allowedOrigins []string, mw ...mux.MiddlewareFunc) {
	upgrader.CheckOrigin = originChecker(allowedOrigins)

	var h http.Handler = http.HandlerFunc(hub.ServeWS)
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	r.Handle("/ws", h).Methods(http.MethodGet)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return strings.EqualFold(origin, "http://"+r.Host) || strings.EqualFold(origin, "https://"+r.Host)
	}
}
