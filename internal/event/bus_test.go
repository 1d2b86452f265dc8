package event

import (
	"testing"

	"github.com/quillpress/quillpress/internal/db"
)

func TestBusDeliversInRegistrationOrder(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(func(Event) { order = append(order, "first") })
	bus.Subscribe(func(Event) { order = append(order, "second") })

	bus.Publish(NewPostCreated(db.Post{Title: "t"}))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", order)
	}
}

func TestBusIgnoresNilHandlers(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(nil)

	// Publishing must not panic with a nil handler registered.
	bus.Publish(NewPostDeleted(db.Post{Title: "t"}))
}

func TestEventsCarryIdentity(t *testing.T) {
	created := NewPostCreated(db.Post{Title: "a"})
	updated := NewPostUpdated(db.Post{Title: "a"}, db.Post{Title: "b"})
	deleted := NewPostDeleted(db.Post{Title: "b"})

	if created.EventID() == "" || updated.EventID() == "" || deleted.EventID() == "" {
		t.Fatal("expected non-empty event ids")
	}
	if created.EventID() == updated.EventID() {
		t.Fatal("expected distinct event ids")
	}

	if created.Name() != "post.created" || updated.Name() != "post.updated" || deleted.Name() != "post.deleted" {
		t.Fatalf("unexpected event names: %s %s %s", created.Name(), updated.Name(), deleted.Name())
	}
	if created.OccurredAt().IsZero() {
		t.Fatal("expected emission time set")
	}

	if updated.Old.Title != "a" || updated.New.Title != "b" {
		t.Fatalf("update snapshots wrong: %q -> %q", updated.Old.Title, updated.New.Title)
	}
}
