package events

import "time"

// Event is one change to the planning tables. Services publish it after the
// transaction that made the change has committed. Version counts events
// within the stream, starting at 1.
type Event interface {
	Type() string
	StreamID() string
	Data() any
	Timestamp() time.Time
	Version() int
}

// Handler receives the events of a subscription
type Handler interface {
	Handle(event Event) error
}

// HandlerFunc lets a plain function subscribe
type HandlerFunc func(event Event) error

func (f HandlerFunc) Handle(event Event) error { return f(event) }

// EventStore keeps an append-only log of planning events per stream and
// hands every appended event to the matching subscribers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	// Subscribe registers handler for eventTypes, or for every type when none
	// are given. Calling cancel ends the subscription.
	Subscribe(handler Handler, eventTypes ...string) (cancel func())
}

type planningEvent struct {
	kind    string
	stream  string
	payload any
	at      time.Time
	version int
}

func (e planningEvent) Type() string         { return e.kind }
func (e planningEvent) StreamID() string     { return e.stream }
func (e planningEvent) Data() any            { return e.payload }
func (e planningEvent) Timestamp() time.Time { return e.at }
func (e planningEvent) Version() int         { return e.version }

// NewEvent stamps a payload with its type and stream. The store assigns the version.
func NewEvent(eventType, streamID string, data any) Event {
	return planningEvent{kind: eventType, stream: streamID, payload: data, at: time.Now().UTC()}
}
