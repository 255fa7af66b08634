package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/adapt/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub(nopLogger{}, func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r)
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt Event
	require.NoError(t, json.Unmarshal(data, &evt))
	return evt
}

func TestHubConnect(t *testing.T) {
	hub, srv := newTestHub(t)

	conn := dial(t, srv)
	evt := readEvent(t, conn)
	assert.Equal(t, core.EventConnected, evt.Event)
	assert.NotEmpty(t, evt.Payload)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHubPublish(t *testing.T) {
	hub, srv := newTestHub(t)

	conn1 := dial(t, srv)
	conn2 := dial(t, srv)
	id1 := readEvent(t, conn1).Payload.(string)
	readEvent(t, conn2)

	hub.Publish(core.EventNewQuestion, map[string]string{"text": "hello"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		evt := readEvent(t, conn)
		assert.Equal(t, core.EventNewQuestion, evt.Event)
		assert.Equal(t, map[string]interface{}{"text": "hello"}, evt.Payload)
	}

	// the originator does not hear its own event
	hub.Publish(core.EventNewAnswer, "payload", id1)
	evt := readEvent(t, conn2)
	assert.Equal(t, core.EventNewAnswer, evt.Event)

	require.NoError(t, conn1.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn1.ReadMessage()
	assert.Error(t, err)
}

func TestHubLateSubscriberSeesNothing(t *testing.T) {
	hub, srv := newTestHub(t)

	hub.Publish(core.EventNewReply, "missed")

	conn := dial(t, srv)
	readEvent(t, conn)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "no replay of events published before connect")
}
