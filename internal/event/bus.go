// Package event provides the synchronous publish/subscribe bus that connects
// ledger mutations to the parties observing them.
package event

import "sync"

// Handler receives a published payload. It runs on the publisher's goroutine
// before Publish returns.
type Handler func(topic string, payload any)

// Subscription identifies a registered handler.
type Subscription struct {
	id    int
	topic string
}

// Topic returns the topic the subscription listens on.
func (s Subscription) Topic() string { return s.topic }

// Bus delivers payloads to every current subscriber of a topic, in
// subscription order.
type Bus interface {
	Publish(topic string, payload any)
	Subscribe(topic string, h Handler) Subscription
	Unsubscribe(s Subscription)
	Reset()
}

type subscriber struct {
	id int
	h  Handler
}

// Dispatcher is the in-process Bus implementation.
type Dispatcher struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscriber
}

// New returns an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{subs: make(map[string][]subscriber)}
}

// Publish calls every handler subscribed to topic at the time of the call.
// Handlers may publish, subscribe or unsubscribe; changes take effect for
// the next Publish.
func (d *Dispatcher) Publish(topic string, payload any) {
	d.mu.Lock()
	subs := make([]subscriber, len(d.subs[topic]))
	copy(subs, d.subs[topic])
	d.mu.Unlock()

	for _, s := range subs {
		s.h(topic, payload)
	}
}

// Subscribe registers h for topic.
func (d *Dispatcher) Subscribe(topic string, h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.subs[topic] = append(d.subs[topic], subscriber{id: d.nextID, h: h})
	return Subscription{id: d.nextID, topic: topic}
}

// Unsubscribe removes a handler. Unknown subscriptions are ignored.
func (d *Dispatcher) Unsubscribe(s Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs := d.subs[s.topic]
	for i, sub := range subs {
		if sub.id == s.id {
			d.subs[s.topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(d.subs[s.topic]) == 0 {
		delete(d.subs, s.topic)
	}
}

// Reset drops every subscription.
func (d *Dispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = make(map[string][]subscriber)
}

// SubscriberCount returns the number of handlers registered for topic.
func (d *Dispatcher) SubscriberCount(topic string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs[topic])
}
