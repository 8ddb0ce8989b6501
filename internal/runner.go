package internal

import (
	"fmt"
	"time"
)

type stageOutcome[T any] struct {
	value T
	err   error
}

// runStage executes fn on its own goroutine so the caller's event stream is
// never blocked on it. While fn is running, buffered relay messages are
// forwarded to emit as progress events for the given stage; when an idle
// tick passes with nothing pending, a keep-alive marker is emitted instead
// to defeat intermediary buffering. After fn returns, any remaining
// messages are drained before the outcome is handed back.
//
// emit reports whether the consumer is still listening. Once it returns
// false the runner stops producing output but keeps waiting for fn, which
// is expected to observe the shared cancel token and return early. There
// are no retries at this layer.
func runStage[T any](stage Stage, relay *Relay, interval time.Duration, emit func(ProgressEvent) bool, fn func() (T, error)) (T, error) {
	done := make(chan stageOutcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- stageOutcome[T]{zero, fmt.Errorf("stage %s panicked: %v", stage, r)}
			}
		}()
		v, err := fn()
		done <- stageOutcome[T]{v, err}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	listening := true
	forward := func() {
		for _, msg := range relay.Drain() {
			if listening && !emit(ProgressEvent{Status: stage, Message: msg}) {
				listening = false
			}
		}
	}

	for {
		select {
		case out := <-done:
			forward()
			return out.value, out.err
		case <-relay.Notify():
			forward()
		case <-ticker.C:
			if listening && !emit(ProgressEvent{KeepAlive: true}) {
				listening = false
			}
		}
	}
}
