package service

import (
	"context"
	"sync"
	"time"
)

// Streamer replays an answer one rune per tick, simulating incremental
// delivery. It is explicitly cancellable: owners must call Stop (or cancel
// the parent context) when the session that produced it is torn down,
// otherwise the ticker keeps running for the remainder of the text.
type Streamer struct {
	out    chan string
	done   chan struct{}
	cancel context.CancelFunc

	mu   sync.Mutex
	text string
}

// NewStreamer starts streaming text at the given cadence. The output channel
// carries the cumulative text after each tick and is closed when the text is
// exhausted or the streamer is cancelled.
func NewStreamer(ctx context.Context, text string, tick time.Duration) *Streamer {
	ctx, cancel := context.WithCancel(ctx)
	runes := []rune(text)
	s := &Streamer{
		out:    make(chan string, len(runes)),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go s.run(ctx, runes, tick)
	return s
}

func (s *Streamer) run(ctx context.Context, runes []rune, tick time.Duration) {
	defer close(s.done)
	defer close(s.out)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for i := range runes {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.text = string(runes[:i+1])
			text := s.text
			s.mu.Unlock()
			// The channel is sized for the full text, so this never blocks
			// even when the consumer stops reading.
			s.out <- text
		}
	}
}

// Out returns the channel of cumulative text, one element per tick.
func (s *Streamer) Out() <-chan string {
	return s.out
}

// Done closes when streaming finishes or is cancelled.
func (s *Streamer) Done() <-chan struct{} {
	return s.done
}

// Text returns the text streamed so far.
func (s *Streamer) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Stop cancels the streamer. Safe to call more than once.
func (s *Streamer) Stop() {
	s.cancel()
}
