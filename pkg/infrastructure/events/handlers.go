package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// LogHandler writes each event it receives to log at level
func LogHandler(log zerolog.Logger, level zerolog.Level) Handler {
	return HandlerFunc(func(e Event) error {
		log.WithLevel(level).
			Str("event_type", e.Type()).
			Str("stream", e.StreamID()).
			Int("version", e.Version()).
			Msg("planning event")
		return nil
	})
}

// Recorder keeps the events it receives in arrival order
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Handle(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what has been received so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
