package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/trezcool/adapt/core"
)

const sendBufferSize = 64

// Event is the wire frame for every broadcast message.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub keeps the registry of connected websocket clients and fans published
// events out to them. It implements core.Broadcaster.
type Hub struct {
	logger   core.Logger
	upgrader websocket.Upgrader

	clients     map[string]*client
	clientsLock sync.RWMutex
}

var _ core.Broadcaster = (*Hub)(nil)

func NewHub(logger core.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[string]*client),
	}
}

// ServeWS upgrades the request and registers the connection. On success the
// client is sent a "connected" event carrying its socket ID, which it echoes
// back in the X-Socket-ID header of subsequent REST calls so its own events
// are not played back to it.
func (hub *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	cl := newClient(hub, conn)
	hub.register(cl)

	go cl.writePump()
	go cl.readPump()

	cl.send(Event{Event: core.EventConnected, Payload: cl.id})
	return nil
}

// Publish fans event out to every registered client except those whose
// socket ID appears in exclude. Delivery is at-most-once: a client whose
// send buffer is full is dropped rather than slowing the rest down.
func (hub *Hub) Publish(event string, payload interface{}, exclude ...string) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		hub.logger.Error("realtime: marshaling event", "event", event, "error", err)
		return
	}

	hub.clientsLock.RLock()
	defer hub.clientsLock.RUnlock()

	for id, cl := range hub.clients {
		if contains(exclude, id) {
			continue
		}
		select {
		case cl.out <- data:
		default:
			hub.logger.Warn("realtime: dropping slow client", "socket", id)
			go cl.close()
		}
	}
}

// ClientCount reports the number of registered connections.
func (hub *Hub) ClientCount() int {
	hub.clientsLock.RLock()
	defer hub.clientsLock.RUnlock()
	return len(hub.clients)
}

// Close disconnects all clients. Used on server shutdown.
func (hub *Hub) Close() {
	hub.clientsLock.RLock()
	clients := make([]*client, 0, len(hub.clients))
	for _, cl := range hub.clients {
		clients = append(clients, cl)
	}
	hub.clientsLock.RUnlock()

	for _, cl := range clients {
		cl.close()
	}
}

func (hub *Hub) register(cl *client) {
	hub.clientsLock.Lock()
	defer hub.clientsLock.Unlock()
	hub.clients[cl.id] = cl
}

func (hub *Hub) unregister(cl *client) {
	hub.clientsLock.Lock()
	defer hub.clientsLock.Unlock()
	delete(hub.clients, cl.id)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
