package channels

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// subscriber pairs a channel with its send strategy.
type subscriber[T any] struct {
	ch      chan<- T
	timeout *time.Duration // nil means non-blocking
	dropped atomic.Int64
}

func (s *subscriber[T]) send(msg T) {
	var err error
	if s.timeout != nil {
		err = SendWithTimeout(s.ch, msg, *s.timeout)
	} else {
		err = SendNonBlock(s.ch, msg)
	}

	if err != nil {
		s.dropped.Add(1)
	}
}

// Broadcaster fans messages from a single input channel out to multiple
// subscriber channels. It owns the input channel: on context cancellation
// the input is closed and remaining messages are drained to subscribers
// before shutdown completes.
type Broadcaster[T any] struct {
	subscribers []*subscriber[T]
	input       chan T
	started     atomic.Bool
	wg          sync.WaitGroup
}

// NewBroadcaster creates an empty broadcaster for messages of type T.
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{}
}

// Subscribe adds a channel receiving messages non-blockingly: when the
// channel is full, messages are dropped for that subscriber. Must be called
// before Run.
func (b *Broadcaster[T]) Subscribe(ch chan<- T) {
	b.subscribers = append(b.subscribers, &subscriber[T]{ch: ch})
}

// SubscribeWithTimeout adds a channel whose sends block up to timeout
// before the message is dropped. Must be called before Run.
func (b *Broadcaster[T]) SubscribeWithTimeout(ch chan<- T, timeout time.Duration) {
	b.subscribers = append(b.subscribers, &subscriber[T]{ch: ch, timeout: &timeout})
}

// Run starts broadcasting and returns the input channel. The input is owned
// by the broadcaster and closed when ctx is cancelled; remaining messages
// are drained before Wait returns.
func (b *Broadcaster[T]) Run(ctx context.Context) (chan<- T, error) {
	if b.started.Load() {
		return nil, fmt.Errorf("broadcaster already started")
	}

	if len(b.subscribers) == 0 {
		return nil, fmt.Errorf("no subscribers available")
	}

	b.input = make(chan T, len(b.subscribers)*2)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for msg := range b.input {
			for _, sub := range b.subscribers {
				sub.send(msg)
			}
		}
	}()

	b.started.Store(true)

	go func() {
		<-ctx.Done()
		close(b.input)
	}()

	return b.input, nil
}

// Wait blocks until the input channel is closed and fully drained.
func (b *Broadcaster[T]) Wait() {
	b.wg.Wait()
}

// Dropped returns the total number of messages dropped across subscribers.
func (b *Broadcaster[T]) Dropped() int64 {
	var total int64
	for _, sub := range b.subscribers {
		total += sub.dropped.Load()
	}

	return total
}
