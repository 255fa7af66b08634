package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxInboundSize = 512
)

// client is one registered websocket connection.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn

	out       chan []byte
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *client {
	return &client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		out:  make(chan []byte, sendBufferSize),
	}
}

func (cl *client) send(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		cl.hub.logger.Error("realtime: marshaling event", "event", evt.Event, "error", err)
		return
	}
	select {
	case cl.out <- data:
	default:
		go cl.close()
	}
}

func (cl *client) close() {
	cl.closeOnce.Do(func() {
		cl.hub.unregister(cl)
		close(cl.out)
	})
}

// readPump drains inbound frames. Clients do not send application messages;
// reading is only needed to process control frames and detect disconnects.
func (cl *client) readPump() {
	defer cl.close()

	cl.conn.SetReadLimit(maxInboundSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case data, open := <-cl.out:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				cl.close()
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.close()
				return
			}
		}
	}
}
