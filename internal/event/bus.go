// Package event carries the post domain events to whoever registered an
// interest in them. Delivery is synchronous and best-effort: the publishing
// operation never fails because of a handler.
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quillpress/quillpress/internal/db"
)

// Event is implemented by every domain event.
type Event interface {
	EventID() string
	Name() string
	OccurredAt() time.Time
}

// Meta carries the identity shared by all events.
type Meta struct {
	ID   string
	Time time.Time
}

// EventID returns the unique event identifier.
func (m Meta) EventID() string { return m.ID }

// OccurredAt returns the emission time.
func (m Meta) OccurredAt() time.Time { return m.Time }

func newMeta() Meta {
	return Meta{ID: uuid.New().String(), Time: time.Now()}
}

// PostCreated is emitted after a post is first persisted.
type PostCreated struct {
	Meta
	Post db.Post
}

// Name identifies the event kind.
func (PostCreated) Name() string { return "post.created" }

// PostUpdated is emitted after an edit, carrying both snapshots.
type PostUpdated struct {
	Meta
	Old db.Post
	New db.Post
}

// Name identifies the event kind.
func (PostUpdated) Name() string { return "post.updated" }

// PostDeleted is emitted after a soft delete, carrying the final snapshot.
type PostDeleted struct {
	Meta
	Post db.Post
}

// Name identifies the event kind.
func (PostDeleted) Name() string { return "post.deleted" }

// NewPostCreated builds a PostCreated event.
func NewPostCreated(post db.Post) PostCreated {
	return PostCreated{Meta: newMeta(), Post: post}
}

// NewPostUpdated builds a PostUpdated event.
func NewPostUpdated(old, updated db.Post) PostUpdated {
	return PostUpdated{Meta: newMeta(), Old: old, New: updated}
}

// NewPostDeleted builds a PostDeleted event.
func NewPostDeleted(post db.Post) PostDeleted {
	return PostDeleted{Meta: newMeta(), Post: post}
}

// Handler consumes published events.
type Handler func(Event)

// Bus distributes events to an explicit handler list.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers the event to every handler in registration order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
