// Package events is the in-process notification bus of a storefront session.
package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	TopicCartChanged     = "cart.changed"
	TopicTotalsChanged   = "totals.changed"
	TopicIdentityChanged = "identity.changed"
)

type Handler func(payload any)

type subscription struct {
	id int
	fn Handler
}

// Bus delivers events synchronously, in subscription order. A panicking
// handler is logged and does not stop delivery to the rest.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
	log    *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{subs: make(map[string][]subscription), log: log}
}

// Subscribe registers fn for topic and returns its unsubscribe func.
func (b *Bus) Subscribe(topic string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(topic, s.fn, payload)
	}
}

func (b *Bus) deliver(topic string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("topic", topic),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	fn(payload)
}
