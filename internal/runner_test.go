package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStageForwardsProgressInOrder(t *testing.T) {
	relay := NewRelay()

	var events []ProgressEvent
	emit := func(ev ProgressEvent) bool {
		events = append(events, ev)
		return true
	}

	value, err := runStage(StageTranslating, relay, time.Minute, emit, func() (int, error) {
		relay.Publish("first")
		relay.Publish("second")
		relay.Publish("third")
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	var messages []string
	for _, ev := range events {
		require.False(t, ev.KeepAlive)
		assert.Equal(t, StageTranslating, ev.Status)
		messages = append(messages, ev.Message)
	}
	assert.Equal(t, []string{"first", "second", "third"}, messages)
}

func TestRunStageEmitsKeepAliveWhenIdle(t *testing.T) {
	relay := NewRelay()

	keepAlives := 0
	emit := func(ev ProgressEvent) bool {
		if ev.KeepAlive {
			keepAlives++
		}
		return true
	}

	_, err := runStage(StageExtracting, relay, 10*time.Millisecond, emit, func() (struct{}, error) {
		time.Sleep(60 * time.Millisecond)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, keepAlives, 1)
}

func TestRunStageReturnsError(t *testing.T) {
	relay := NewRelay()
	wantErr := errors.New("backend unavailable")

	_, err := runStage(StageExtracting, relay, time.Minute, func(ProgressEvent) bool { return true }, func() ([]string, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestRunStageRecoversPanic(t *testing.T) {
	relay := NewRelay()

	_, err := runStage(StageExtracting, relay, time.Minute, func(ProgressEvent) bool { return true }, func() ([]string, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunStageStopsEmittingWhenConsumerGone(t *testing.T) {
	relay := NewRelay()

	emitted := 0
	emit := func(ev ProgressEvent) bool {
		emitted++
		return false // consumer abandoned the stream
	}

	value, err := runStage(StageTranslating, relay, time.Minute, emit, func() (string, error) {
		relay.Publish("a")
		relay.Publish("b")
		relay.Publish("c")
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", value)
	// After the first refused emit, no further output is produced.
	assert.Equal(t, 1, emitted)
}
