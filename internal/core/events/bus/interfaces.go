package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus used to surface game
// lifecycle facts (spawns, despawns, scheduler faults) to observers such as
// the HUD, the spectator stream and tests.
//
// Delivery is synchronous: Publish calls handlers in the caller goroutine, in
// subscription order. Handler errors are joined and returned from Publish.
// Handlers run on the scheduler's tick when the publisher is a scheduled
// callback, so they should be quick.
type EventBus interface {
	// Publish delivers the event to all active subscribers of event.Type().
	Publish(event Event) error
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	// PublishAsync publishes in a separate goroutine; the returned channel
	// receives the joined error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	// PublishBatch publishes events sequentially and aggregates errors.
	PublishBatch(events ...Event) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns counters collected while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	// Tick is the scheduler tick the event was produced on, 0 if unknown.
	Tick() uint64
	Timestamp() time.Time
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is notified about deliveries.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
