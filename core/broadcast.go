package core

// Broadcast event names, multiplexed over a single connection per client.
const (
	EventConnected   = "connected"
	EventNewQuestion = "newQuestion"
	EventNewAnswer   = "newAnswer"
	EventNewReply    = "newReply"
)

// Broadcaster fans a newly created record out to all connected clients.
//
// Delivery is at-most-once: no ack, no replay. A client connecting after a
// publish never sees it and must reconcile by re-fetching full state over
// the REST API. Ordering is only guaranteed within one event name.
// Connections listed in exclude (by socket ID) are skipped so that the
// originator does not receive its own event back.
type Broadcaster interface {
	Publish(event string, payload interface{}, exclude ...string)
}

// NopBroadcaster discards all events. Used where no hub is wired (CLI).
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(string, interface{}, ...string) {}
