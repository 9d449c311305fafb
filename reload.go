package site

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Messages queued per client before it is considered stuck and dropped.
	sendBuffer = 16

	reloadMessage = "reload"
)

type reloadClient struct {
	send chan string
}

// reloadHub fans reload messages out to connected browsers.
type reloadHub struct {
	mu      sync.Mutex
	clients map[*reloadClient]struct{}
	closed  bool
}

func newReloadHub() *reloadHub {
	return &reloadHub{clients: make(map[*reloadClient]struct{})}
}

// register adds a client. It returns nil once the hub is closed.
func (h *reloadHub) register() *reloadClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	c := &reloadClient{send: make(chan string, sendBuffer)}
	h.clients[c] = struct{}{}
	return c
}

func (h *reloadHub) unregister(c *reloadClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast queues msg for every client and returns how many received it.
// Clients whose buffer is full are disconnected.
func (h *reloadHub) broadcast(msg string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for c := range h.clients {
		select {
		case c.send <- msg:
			sent++
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	return sent
}

func (h *reloadHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *reloadHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// Reload tells every connected browser to reload and returns how many were
// notified.
func (a *App) Reload() int {
	return a.hub.broadcast(reloadMessage)
}

func (a *App) handleReload(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*", "[::1]:*"},
	})
	if err != nil {
		// Accept has already written the error response.
		a.Log.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}
	defer conn.CloseNow()

	client := a.hub.register()
	if client == nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return nil
	}
	defer a.hub.unregister(client)

	// The browser never sends anything; CloseRead handles control frames
	// and cancels ctx once the peer goes away.
	ctx := conn.CloseRead(c.Request().Context())

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-client.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return nil
			}
			if err := write(ctx, conn, msg); err != nil {
				a.Log.Debug("websocket write failed", zap.Error(err))
				return nil
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, []byte(msg))
}
