package eventbus

import (
	"sync"
	"time"
)

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// Durable marks events that must not be dropped when a subscriber lags,
// such as the outcome of a run. They are delivered with a blocking send
// bounded by the bus delivery timeout.
type Durable interface {
	Durable()
}

// DefaultDeliveryTimeout bounds the blocking send of a Durable event.
const DefaultDeliveryTimeout = 5 * time.Second

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

type subscriber struct {
	ch   chan Event
	quit chan struct{}
	once sync.Once
}

func (s *subscriber) stop() { s.once.Do(func() { close(s.quit) }) }

// Bus is the default EventBus implementation using fan-out channels.
// Progress events are dropped for subscribers whose buffer is full;
// Durable events wait for room.
type Bus struct {
	// DeliveryTimeout bounds the wait for a Durable event.
	DeliveryTimeout time.Duration

	mu        sync.RWMutex
	subs      []*subscriber
	closed    bool
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new Bus.
func New() *Bus {
	return &Bus{DeliveryTimeout: DefaultDeliveryTimeout, done: make(chan struct{})}
}

// Publish sends the event to all subscribers.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	if _, ok := e.(Durable); ok {
		b.deliver(e)
		return
	}
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
		}
	}
}

func (b *Bus) deliver(e Event) {
	timeout := b.DeliveryTimeout
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		case <-s.quit:
		case <-b.done:
			return
		case <-timer.C:
			return
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	s := &subscriber{ch: make(chan Event, 8), quit: make(chan struct{})}
	b.mu.Lock()
	if b.closed {
		close(s.ch)
	} else {
		b.subs = append(b.subs, s)
	}
	b.mu.Unlock()
	return s.ch
}

func (b *Bus) find(sub <-chan Event) *subscriber {
	for _, s := range b.subs {
		if s.ch == sub {
			return s
		}
	}
	return nil
}

// Unsubscribe removes the subscriber and closes its channel. A Durable
// event waiting on that subscriber is released first.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.RLock()
	s := b.find(sub)
	b.mu.RUnlock()
	if s == nil {
		return
	}
	s.stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.subs {
		if cur == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(s.ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels and clears the list. Events already
// buffered stay readable.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
}
