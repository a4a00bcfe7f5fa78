package event

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Bus is the central event bus interface.
//
// Delivery is synchronous: Publish blocks until every matching handler has
// run in the publisher's goroutine. Handlers may publish further events;
// those are delivered before the outer Publish returns.
type Bus interface {
	// Publish delivers an event to all matching subscriptions.
	Publish(ctx context.Context, event any) error

	// Subscribe creates a new subscription for the given topic pattern.
	Subscribe(topicPattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error)

	// SubscribeFunc is a convenience method for subscribing with a function handler.
	SubscribeFunc(topicPattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(sub Subscription) error

	// Stats returns current bus statistics.
	Stats() Stats
}

// Stats contains event bus statistics.
type Stats struct {
	// EventsPublished is the number of published events that matched at
	// least one subscription.
	EventsPublished uint64

	// EventsDelivered is the total number of events delivered to handlers.
	EventsDelivered uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// HandlerPanics is the number of handlers that panicked.
	HandlerPanics uint64

	// ActiveSubscribers is the current number of active subscriptions.
	ActiveSubscribers int
}

// PanicHandler is called when a handler panics during dispatch.
type PanicHandler func(event any, recovered any)

// BusOption configures a Bus.
type BusOption func(*bus)

// WithPanicHandler sets the callback invoked when a handler panics.
func WithPanicHandler(h PanicHandler) BusOption {
	return func(b *bus) {
		b.panicHandler = h
	}
}

// bus is the default Bus implementation.
type bus struct {
	mu   sync.RWMutex
	subs map[string]*subscription

	panicHandler PanicHandler

	eventsPublished atomic.Uint64
	eventsDelivered atomic.Uint64
	handlerErrors   atomic.Uint64
	handlerPanics   atomic.Uint64
}

// NewBus creates a new synchronous event bus.
func NewBus(opts ...BusOption) Bus {
	b := &bus{
		subs: make(map[string]*subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers an event to all matching subscriptions in priority order.
func (b *bus) Publish(ctx context.Context, event any) error {
	eventTopic := extractTopic(event)
	if eventTopic == "" {
		return ErrInvalidEvent
	}

	subs := b.match(eventTopic)
	if len(subs) == 0 {
		return nil
	}

	b.eventsPublished.Add(1)

	var firstErr error
	for _, sub := range subs {
		if !sub.ShouldDeliver(event) {
			continue
		}

		err := b.dispatch(ctx, event, sub)
		switch {
		case err == nil:
			b.eventsDelivered.Add(1)
		default:
			b.handlerErrors.Add(1)
			if firstErr == nil {
				firstErr = err
			}
		}

		if sub.config.Once && err == nil {
			sub.Cancel()
			b.remove(sub.ID())
		}
	}

	return firstErr
}

// dispatch runs a single handler, isolating panics.
func (b *bus) dispatch(ctx context.Context, event any, sub *subscription) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			b.handlerPanics.Add(1)
			if b.panicHandler != nil {
				b.panicHandler(event, recovered)
			}
			err = &PanicError{
				SubscriptionID: sub.ID(),
				Topic:          sub.Topic().String(),
				Value:          recovered,
			}
		}
	}()
	return sub.Handler().Handle(ctx, event)
}

// Subscribe creates a new subscription for the given topic pattern.
func (b *bus) Subscribe(topicPattern Topic, handler Handler, opts ...SubscriptionOption) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if topicPattern == "" {
		return nil, ErrInvalidTopic
	}

	sub := newSubscription(uuid.NewString(), topicPattern, handler, opts...)

	b.mu.Lock()
	b.subs[sub.ID()] = sub
	b.mu.Unlock()

	return sub, nil
}

// SubscribeFunc is a convenience method for subscribing with a function handler.
func (b *bus) SubscribeFunc(topicPattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	return b.Subscribe(topicPattern, fn, opts...)
}

// Unsubscribe removes a subscription.
func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}

	sub.Cancel()
	if !b.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

// Stats returns current bus statistics.
func (b *bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, sub := range b.subs {
		if sub.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		EventsDelivered:   b.eventsDelivered.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}

// match returns active subscriptions matching the topic, in priority order.
// A snapshot is returned so handlers may subscribe or unsubscribe during
// dispatch without invalidating the iteration.
func (b *bus) match(eventTopic Topic) []*subscription {
	b.mu.RLock()
	var matched []*subscription
	for _, sub := range b.subs {
		if eventTopic.Matches(sub.Topic()) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].config.Priority < matched[j].config.Priority
	})
	return matched
}

func (b *bus) remove(subID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[subID]; !ok {
		return false
	}
	delete(b.subs, subID)
	return true
}

// extractTopic extracts the topic from an event.
func extractTopic(event any) Topic {
	if tp, ok := event.(TopicProvider); ok {
		return tp.EventTopic()
	}
	return ""
}
