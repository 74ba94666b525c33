// Package notify is a host module that lets a compiled program push a
// live event out over WebSocket to whatever subscribers are attached,
// e.g. streaming progress updates out of a long-running while-loop
// script. Adapted from the host application's pkg/websocket hub/room
// model (a set of connections, guarded by a mutex, fanned out to on
// broadcast), narrowed to one broadcast room per Hub.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/glint-lang/glint/pkg/registry"
	"github.com/glint-lang/glint/pkg/value"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is the JSON envelope broadcast to every subscriber.
type Event struct {
	ExecutionID string `json:"execution_id"`
	Message     string `json:"message"`
}

// Hub fans broadcast events out to every subscribed connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{connections: make(map[*websocket.Conn]bool)}
}

// Subscribe upgrades an incoming HTTP request to a WebSocket connection
// and registers it as a broadcast recipient.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.connections[conn] = true
	h.mu.Unlock()

	go h.drainUntilClosed(conn)
	return nil
}

// drainUntilClosed discards inbound frames (this hub is broadcast-only)
// until the connection errors out, then unregisters it.
func (h *Hub) drainUntilClosed(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.connections, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends ev as JSON to every currently-subscribed connection,
// dropping connections that fail to write.
func (h *Hub) Broadcast(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.connections))
	for c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.mu.Lock()
			delete(h.connections, c)
			h.mu.Unlock()
			c.Close()
		}
	}
	return nil
}

// SubscriberCount reports how many connections are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Register wires moduleName/broadcast(message) so a compiled program can
// push a live update, tagged with executionID, to every subscriber.
func (h *Hub) Register(reg *registry.Registry, moduleName, executionID string) {
	reg.AddFunction(registry.FuncDef{
		Name:       "broadcast",
		Module:     moduleName,
		Inlineable: false,
		Callable: func(args registry.ArgIter) (value.Value, error) {
			msg, _, err := args.Next()
			if err != nil {
				return value.Value{}, err
			}
			if err := h.Broadcast(Event{ExecutionID: executionID, Message: msg.Text()}); err != nil {
				return value.Value{}, &registry.RuntimeError{Kind: "FunctionError", Message: err.Error()}
			}
			return value.Bool(true), nil
		},
	})
}
