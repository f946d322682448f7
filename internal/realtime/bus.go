package realtime

import (
	"sync"

	"github.com/avelara/beacon/internal/domain"
)

// UpdateHandler receives record updates and creations.
type UpdateHandler func(*domain.Initiative)

// CommentHandler receives comment broadcasts.
type CommentHandler func(domain.Comment)

// NotificationHandler receives notification broadcasts.
type NotificationHandler func(*domain.Notification)

// Unsubscribe removes a previously registered handler. Calling it more than
// once is harmless.
type Unsubscribe func()

type subscription[T any] struct {
	id int
	fn T
}

// Bus is the in-process realtime broadcast surface. Fanout is synchronous
// and in registration order. Every subscription returns its own unsubscribe
// function, so reconnecting views never leak handlers.
type Bus struct {
	mu       sync.Mutex
	identity string
	nextID   int

	updates       []subscription[UpdateHandler]
	creates       []subscription[UpdateHandler]
	comments      []subscription[CommentHandler]
	notifications []subscription[NotificationHandler]
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Connect records the client identity used to tag outbound broadcasts.
func (b *Bus) Connect(identity string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity = identity
}

// Identity returns the connected client identity.
func (b *Bus) Identity() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identity
}

// OnUpdate subscribes to record update broadcasts.
func (b *Bus) OnUpdate(fn UpdateHandler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.updates = append(b.updates, subscription[UpdateHandler]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.updates = removeByID(b.updates, id)
	}
}

// OnCreate subscribes to record creation broadcasts.
func (b *Bus) OnCreate(fn UpdateHandler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.creates = append(b.creates, subscription[UpdateHandler]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.creates = removeByID(b.creates, id)
	}
}

// OnCommentAdded subscribes to comment broadcasts.
func (b *Bus) OnCommentAdded(fn CommentHandler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.comments = append(b.comments, subscription[CommentHandler]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.comments = removeByID(b.comments, id)
	}
}

// OnNotification subscribes to notification broadcasts.
func (b *Bus) OnNotification(fn NotificationHandler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.notifications = append(b.notifications, subscription[NotificationHandler]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.notifications = removeByID(b.notifications, id)
	}
}

// BroadcastUpdate fans a record update out to update subscribers.
func (b *Bus) BroadcastUpdate(in *domain.Initiative) {
	for _, s := range snapshot(b, &b.updates) {
		s.fn(in)
	}
}

// BroadcastCreate fans a record creation out to create subscribers.
func (b *Bus) BroadcastCreate(in *domain.Initiative) {
	for _, s := range snapshot(b, &b.creates) {
		s.fn(in)
	}
}

// BroadcastComment fans a comment out to comment subscribers.
func (b *Bus) BroadcastComment(c domain.Comment) {
	for _, s := range snapshot(b, &b.comments) {
		s.fn(c)
	}
}

// BroadcastNotification fans a notification out to its subscribers.
func (b *Bus) BroadcastNotification(n *domain.Notification) {
	for _, s := range snapshot(b, &b.notifications) {
		s.fn(n)
	}
}

func snapshot[T any](b *Bus, subs *[]subscription[T]) []subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]subscription[T], len(*subs))
	copy(out, *subs)
	return out
}

func removeByID[T any](subs []subscription[T], id int) []subscription[T] {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
