package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	sendBuffer   = 32
	readLimit    = 4096
	pongDeadline = 60 * time.Second
)

// Envelope is every message pushed to a client.
type Envelope struct {
	Type    string                `json:"type"`
	Initial bool                  `json:"initial,omitempty"`
	Data    models.ForecastResult `json:"data"`
}

type subscribeMsg struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// Hub pushes every forecast to subscribed WebSocket clients and remembers the latest per symbol.
// It implements ForecastSink.
type Hub struct {
	path         string
	pingInterval time.Duration
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	l            *applogger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  map[string][]byte
}

// HubOption configures Hub.
type HubOption func(*Hub)

// WithPath sets the route path.
func WithPath(p string) HubOption {
	return func(h *Hub) {
		if p != "" {
			h.path = p
		}
	}
}

// WithTimings sets the ping interval and per-write deadline.
func WithTimings(ping, write time.Duration) HubOption {
	return func(h *Hub) {
		if ping > 0 {
			h.pingInterval = ping
		}
		if write > 0 {
			h.writeTimeout = write
		}
	}
}

func NewHub(l *applogger.Logger, opts ...HubOption) *Hub {
	if l == nil {
		l = applogger.Nop()
	}
	h := &Hub{
		path:         "/ws/forecasts",
		pingInterval: 30 * time.Second,
		writeTimeout: 10 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		l:       l,
		clients: make(map[*client]struct{}),
		latest:  make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET(h.path, h.serve)
}

func (h *Hub) Name() string { return "websocket" }

// Publish encodes r once and queues it for every matching client without blocking. Slow clients drop messages.
func (h *Hub) Publish(_ context.Context, r models.ForecastResult) error {
	b, err := json.Marshal(Envelope{Type: "forecast", Data: r})
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[r.Symbol] = b
	for c := range h.clients {
		if !c.wants(r.Symbol) {
			continue
		}
		select {
		case c.send <- b:
		default:
			h.l.Warn("ws client queue full, dropping", applogger.String("symbol", r.Symbol))
		}
	}
	return nil
}

// ClientCount is the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) serve(ec echo.Context) error {
	conn, err := h.upgrader.Upgrade(ec.Response(), ec.Request(), nil)
	if err != nil {
		h.l.Warn("ws upgrade failed", applogger.Error(err))
		return nil
	}
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	c.setSymbols(util.ParseSymbols(ec.QueryParam("symbols")))

	h.mu.Lock()
	h.clients[c] = struct{}{}
	for sym, b := range h.latest {
		if c.wants(sym) {
			select {
			case c.send <- markInitial(b):
			default:
			}
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.l.Info("ws client connected", applogger.Int("clients", n))

	go c.writePump()
	c.readPump()
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.l.Info("ws client disconnected", applogger.Int("clients", n))
}

func markInitial(b []byte) []byte {
	var env struct {
		Type    string          `json:"type"`
		Initial bool            `json:"initial"`
		Data    json.RawMessage `json:"data"`
	}
	if json.Unmarshal(b, &env) != nil {
		return b
	}
	env.Initial = true
	out, err := json.Marshal(env)
	if err != nil {
		return b
	}
	return out
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	subMu   sync.RWMutex
	symbols map[string]struct{}
}

// wants reports whether the client subscribed to symbol; no subscription means everything.
func (c *client) wants(symbol string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	if len(c.symbols) == 0 {
		return true
	}
	_, ok := c.symbols[symbol]
	return ok
}

func (c *client) setSymbols(symbols []string) {
	m := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		m[s] = struct{}{}
	}
	c.subMu.Lock()
	c.symbols = m
	c.subMu.Unlock()
}

func (c *client) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongDeadline))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongDeadline))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var m subscribeMsg
		if json.Unmarshal(msg, &m) != nil || m.Type != "subscribe" {
			continue
		}
		c.setSymbols(util.ParseSymbols(strings.Join(m.Symbols, ",")))
	}
}

