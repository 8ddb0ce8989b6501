package internal

import "sync"

// Relay carries human-readable progress strings from a background stage to
// the consumer draining the event stream. It is unbounded so the producer
// never blocks; exactly one producer (the active stage) and one consumer
// (the stage runner) are active at a time.
type Relay struct {
	mu     sync.Mutex
	msgs   []string
	notify chan struct{}
}

// NewRelay returns an empty relay.
func NewRelay() *Relay {
	return &Relay{notify: make(chan struct{}, 1)}
}

// Publish enqueues a progress message and signals the consumer.
func (r *Relay) Publish(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns all buffered messages in enqueue order.
func (r *Relay) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.msgs
	r.msgs = nil
	return msgs
}

// Notify returns a channel that receives a signal after Publish. The signal
// is coalesced: one receive may cover several enqueued messages, so the
// consumer should always Drain after waking.
func (r *Relay) Notify() <-chan struct{} {
	return r.notify
}
