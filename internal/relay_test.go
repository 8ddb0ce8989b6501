package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelayDrainOrder(t *testing.T) {
	relay := NewRelay()

	relay.Publish("one")
	relay.Publish("two")
	relay.Publish("three")

	assert.Equal(t, []string{"one", "two", "three"}, relay.Drain())
	assert.Empty(t, relay.Drain())
}

func TestRelayNotifyCoalesces(t *testing.T) {
	relay := NewRelay()

	relay.Publish("a")
	relay.Publish("b")

	// Several publishes may collapse into one signal; a single wake must
	// still observe everything.
	<-relay.Notify()
	assert.Equal(t, []string{"a", "b"}, relay.Drain())

	select {
	case <-relay.Notify():
		// A second pending signal is fine, but it must not carry messages.
		assert.Empty(t, relay.Drain())
	default:
	}
}

func TestRelayPublishNeverBlocks(t *testing.T) {
	relay := NewRelay()

	// No consumer at all; the producer must not block.
	for i := 0; i < 10_000; i++ {
		relay.Publish("msg")
	}
	assert.Len(t, relay.Drain(), 10_000)
}
