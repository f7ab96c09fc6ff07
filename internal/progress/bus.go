package progress

import (
	"sync"
)

// Kind names one of the scan lifecycle notifications.
type Kind string

const (
	KindStart    Kind = "start"
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Event is one notification. RepositoryName and Progress are set for
// progress events, Err for error events.
type Event struct {
	Kind           Kind
	RepositoryName string
	Progress       int
	Err            error
}

func Start() Event { return Event{Kind: KindStart} }
func Complete() Event { return Event{Kind: KindComplete} }

func Progress(repositoryName string, percent int) Event {
	return Event{Kind: KindProgress, RepositoryName: repositoryName, Progress: percent}
}

func Error(err error) Event {
	return Event{Kind: KindError, Err: err}
}

// Listener handles one event. A returned error stops delivery.
type Listener func(Event) error

// Subscription identifies a registered listener.
type Subscription struct {
	kind Kind
	id   uint64
}

type entry struct {
	id       uint64
	listener Listener
}

// Bus delivers events synchronously, per kind, in registration order.
// It keeps no history; late subscribers see only later events.
type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Kind][]entry
}

func NewBus() *Bus {
	return &Bus{
		listeners: make(map[Kind][]entry),
	}
}

func (b *Bus) Subscribe(kind Kind, l Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.listeners[kind] = append(b.listeners[kind], entry{id: b.nextID, listener: l})
	return Subscription{kind: kind, id: b.nextID}
}

// SubscribeAll registers l for every kind and returns the subscriptions.
func (b *Bus) SubscribeAll(l Listener) []Subscription {
	subs := make([]Subscription, 0, 4)
	for _, k := range []Kind{KindStart, KindProgress, KindComplete, KindError} {
		subs = append(subs, b.Subscribe(k, l))
	}
	return subs
}

// Unsubscribe is a no-op for an unknown subscription.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.listeners[sub.kind]
	for i, e := range entries {
		if e.id == sub.id {
			next := make([]entry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			b.listeners[sub.kind] = append(next, entries[i+1:]...)
			return
		}
	}
}

// Emit calls every listener of the event's kind and returns the first error.
// Listeners run outside the lock, so they may subscribe or unsubscribe.
func (b *Bus) Emit(ev Event) error {
	b.mu.RLock()
	entries := b.listeners[ev.Kind]
	b.mu.RUnlock()

	for _, e := range entries {
		if err := e.listener(ev); err != nil {
			return err
		}
	}
	return nil
}
