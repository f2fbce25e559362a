package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamerDeliversFullText(t *testing.T) {
	streamer := NewStreamer(context.Background(), "hello", time.Millisecond)

	var ticks []string
	for text := range streamer.Out() {
		ticks = append(ticks, text)
	}

	require.NotEmpty(t, ticks)
	assert.Equal(t, "h", ticks[0], "one rune per tick, cumulative")
	assert.Equal(t, "hello", ticks[len(ticks)-1])
	assert.Equal(t, "hello", streamer.Text())

	select {
	case <-streamer.Done():
	case <-time.After(time.Second):
		t.Fatal("streamer did not finish")
	}
}

func TestStreamerStopHaltsDelivery(t *testing.T) {
	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'x'
	}
	streamer := NewStreamer(context.Background(), string(long), time.Millisecond)

	<-streamer.Out() // wait for the first tick
	streamer.Stop()

	select {
	case <-streamer.Done():
	case <-time.After(time.Second):
		t.Fatal("streamer did not stop after cancellation")
	}
	assert.Less(t, len(streamer.Text()), len(long), "cancellation interrupts delivery")

	// Stop is idempotent.
	streamer.Stop()
}

func TestStreamerParentContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	streamer := NewStreamer(ctx, "some long answer", time.Millisecond)

	cancel()

	select {
	case <-streamer.Done():
	case <-time.After(time.Second):
		t.Fatal("streamer ignored parent context cancellation")
	}
}
