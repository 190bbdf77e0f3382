package world

import (
	"sync"
	"time"
)

// Event is one narrative entry in the game history.
type Event struct {
	Seq      uint64    `json:"seq"`
	At       time.Time `json:"at"`
	GameTime string    `json:"game_time,omitempty"`
	Text     string    `json:"text"`
}

// EventSink receives every appended event. Sinks must not block; slow
// consumers are expected to buffer or drop internally.
type EventSink interface {
	WriteEvent(Event) error
}

// EventLog is the ordered, bounded, append-only history of narrative events.
// Oldest entries are trimmed first. It is the only piece of world state that
// is read from outside the simulation goroutine (observer stream, journal),
// hence the lock.
type EventLog struct {
	mu      sync.Mutex
	entries []Event
	max     int
	nextSeq uint64

	sinks []EventSink

	subs map[uint64]chan Event
	subN uint64
}

func NewEventLog(max int) *EventLog {
	if max <= 0 {
		max = 100
	}
	return &EventLog{max: max, subs: map[uint64]chan Event{}}
}

// Attach registers a sink. Call before the simulation starts; sinks are not
// removable.
func (l *EventLog) Attach(s EventSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

func (l *EventLog) Append(gameTime, text string) {
	l.mu.Lock()
	e := Event{
		Seq:      l.nextSeq,
		At:       time.Now(),
		GameTime: gameTime,
		Text:     text,
	}
	l.nextSeq++
	l.entries = append(l.entries, e)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	sinks := l.sinks
	for _, ch := range l.subs {
		select {
		case ch <- e:
		default: // subscriber is behind; it catches up from Recent
		}
	}
	l.mu.Unlock()

	for _, s := range sinks {
		_ = s.WriteEvent(e)
	}
}

// Recent returns the texts of the last n events, oldest first.
func (l *EventLog) Recent(n int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]string, 0, n)
	for _, e := range l.entries[len(l.entries)-n:] {
		out = append(out, e.Text)
	}
	return out
}

func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Subscribe returns a buffered live feed of appended events plus an
// unsubscribe func. Used by the observer transport.
func (l *EventLog) Subscribe(buf int) (<-chan Event, func()) {
	if buf <= 0 {
		buf = 64
	}
	ch := make(chan Event, buf)
	l.mu.Lock()
	id := l.subN
	l.subN++
	l.subs[id] = ch
	l.mu.Unlock()
	return ch, func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}
