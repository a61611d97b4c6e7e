// Package notify keeps the feed of user-facing notifications: transient
// toasts and scroll-to-target requests.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	KindToast  Kind = "toast"
	KindScroll Kind = "scroll"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// DefaultCapacity is how many events a feed retains
const DefaultCapacity = 100

type Event struct {
	ID      uint64    `json:"id"`
	Kind    Kind      `json:"kind"`
	Level   Level     `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
	Target  string    `json:"target,omitempty"`
	Time    time.Time `json:"time"`
}

// Notifier receives notifications from the pipeline
type Notifier interface {
	Toast(level Level, message string)
	ScrollTo(target string)
}

// Feed is a bounded, ordered history of events. Readers poll with Since.
type Feed struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	nextID   uint64
	now      func() time.Time
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		capacity: capacity,
		nextID:   1,
		now:      time.Now,
	}
}

func (f *Feed) Toast(level Level, message string) {
	f.publish(Event{Kind: KindToast, Level: level, Message: message})
}

func (f *Feed) ScrollTo(target string) {
	f.publish(Event{Kind: KindScroll, Target: target})
}

func (f *Feed) publish(e Event) Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	e.ID = f.nextID
	e.Time = f.now()
	f.nextID++

	f.events = append(f.events, e)
	if over := len(f.events) - f.capacity; over > 0 {
		f.events = append(f.events[:0:0], f.events[over:]...)
	}

	slog.Debug("Notification published", "id", e.ID, "kind", e.Kind, "level", e.Level, "message", e.Message, "target", e.Target)
	return e
}

// Since returns the retained events with an ID greater than after, oldest first
func (f *Feed) Since(after uint64) []Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := []Event{}
	for _, e := range f.events {
		if e.ID > after {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent event
func (f *Feed) Last() (Event, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.events) == 0 {
		return Event{}, false
	}
	return f.events[len(f.events)-1], true
}
