package events

import "sync"

// Emitter receives events. Implementations must be safe for concurrent use.
type Emitter interface {
	Emit(Event)
}

// Func adapts a function to the Emitter interface.
type Func func(Event)

// Emit calls f.
func (f Func) Emit(e Event) { f(e) }

// Nop discards every event.
var Nop Emitter = Func(func(Event) {})

// Multi fans an event out to several emitters in order. Nil emitters are
// skipped.
func Multi(emitters ...Emitter) Emitter {
	sinks := make([]Emitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			sinks = append(sinks, e)
		}
	}
	return Func(func(ev Event) {
		for _, s := range sinks {
			s.Emit(ev)
		}
	})
}

// Or returns e, or Nop when e is nil.
func Or(e Emitter) Emitter {
	if e == nil {
		return Nop
	}
	return e
}

// Channel is an Emitter backed by a buffered channel. A consumer ranges
// over Events until the producer calls Close.
//
// Emit blocks while the buffer is full. Events emitted after Close are
// dropped.
type Channel struct {
	mu     sync.RWMutex
	ch     chan Event
	closed bool
}

// NewChannel creates a channel emitter with the given buffer size.
func NewChannel(size int) *Channel {
	if size < 0 {
		size = 0
	}
	return &Channel{ch: make(chan Event, size)}
}

// Emit sends the event to the consumer.
func (c *Channel) Emit(e Event) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	c.ch <- e
}

// Events returns the receive side of the channel.
func (c *Channel) Events() <-chan Event {
	return c.ch
}

// Close closes the channel. It is safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends the event.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many recorded events have the given level.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Level == level {
			n++
		}
	}
	return n
}
