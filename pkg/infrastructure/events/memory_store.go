package events

import (
	"sync"

	"github.com/rs/zerolog"
)

type subscription struct {
	id      int
	types   map[string]bool
	handler Handler
}

func (s subscription) matches(eventType string) bool {
	return len(s.types) == 0 || s.types[eventType]
}

// InMemoryEventStore keeps events in process. Subscribers run synchronously
// on the publishing goroutine, after the store lock is released.
type InMemoryEventStore struct {
	mutex   sync.RWMutex
	streams map[string][]Event
	subs    []subscription
	nextSub int
	log     zerolog.Logger
}

// NewInMemoryEventStore creates an empty store. Handler failures are logged to log.
func NewInMemoryEventStore(log zerolog.Logger) *InMemoryEventStore {
	return &InMemoryEventStore{
		streams: make(map[string][]Event),
		log:     log.With().Str("component", "event_store").Logger(),
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	stored := planningEvent{
		kind:    event.Type(),
		stream:  streamID,
		payload: event.Data(),
		at:      event.Timestamp(),
		version: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], stored)

	var handlers []Handler
	for _, sub := range s.subs {
		if sub.matches(stored.kind) {
			handlers = append(handlers, sub.handler)
		}
	}
	s.mutex.Unlock()

	for _, h := range handlers {
		if err := h.Handle(stored); err != nil {
			s.log.Error().Err(err).Str("event_type", stored.kind).Msg("event handler failed")
		}
	}
	return nil
}

// ReadEvents returns the stream's events from fromVersion on
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(events) {
		return []Event{}, nil
	}
	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) Subscribe(handler Handler, eventTypes ...string) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextSub++
	sub := subscription{id: s.nextSub, handler: handler}
	if len(eventTypes) > 0 {
		sub.types = make(map[string]bool, len(eventTypes))
		for _, t := range eventTypes {
			sub.types[t] = true
		}
	}
	s.subs = append(s.subs, sub)

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for i, existing := range s.subs {
			if existing.id == sub.id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
