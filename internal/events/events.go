// Package events routes pointer and resize input to registered handlers.
//
// Every registration returns a Subscription. Closing it removes the handler,
// so owners can tie listener lifetime to a defer or an explicit teardown.
package events

import (
	"image"
	"sync"

	"github.com/example/tenzor/internal/geom"
)

// Kind identifies an input event type.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	// PointerLeave is sent when the pointer exits the window.
	PointerLeave
	Resize
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerLeave:
		return "leave"
	case Resize:
		return "resize"
	}
	return "unknown"
}

// Event is delivered to handlers.
type Event struct {
	Kind Kind
	// Pos is the pointer position in window coordinates.
	Pos geom.Point
	// Touch marks events synthesised from the primary touch point.
	Touch bool
	// Size is set for Resize events.
	Size image.Point
}

// Handler receives events. Returning true stops delivery to handlers
// registered earlier.
type Handler func(Event) bool

type entry struct {
	id uint64
	fn Handler
}

// Dispatcher delivers events to subscribers, newest first.
type Dispatcher struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Kind][]entry
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[Kind][]entry)}
}

// Subscription is a live registration.
type Subscription struct {
	d     *Dispatcher
	kinds []Kind
	id    uint64
	once  sync.Once
}

// Subscribe registers fn for every kind listed.
func (d *Dispatcher) Subscribe(fn Handler, kinds ...Kind) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	for _, k := range kinds {
		d.subs[k] = append(d.subs[k], entry{id: id, fn: fn})
	}
	return &Subscription{d: d, kinds: kinds, id: id}
}

// Close deregisters the handler. It is safe to call more than once and on a
// nil Subscription.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.d.mu.Lock()
		defer s.d.mu.Unlock()
		for _, k := range s.kinds {
			list := s.d.subs[k]
			out := list[:0]
			for _, e := range list {
				if e.id != s.id {
					out = append(out, e)
				}
			}
			if len(out) == 0 {
				delete(s.d.subs, k)
			} else {
				s.d.subs[k] = out
			}
		}
	})
}

// Dispatch delivers ev and reports whether a handler consumed it.
func (d *Dispatcher) Dispatch(ev Event) bool {
	d.mu.Lock()
	list := append([]entry(nil), d.subs[ev.Kind]...)
	d.mu.Unlock()
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].fn(ev) {
			return true
		}
	}
	return false
}

// Len reports the number of handlers registered for k.
func (d *Dispatcher) Len(k Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs[k])
}
