package channels_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxnote/voxnote/pkg/channels"
)

func TestBroadcaster_FanOut(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := make(chan int, 8)
	b := make(chan int, 8)

	bcast := channels.NewBroadcaster[int]()
	bcast.Subscribe(a)
	bcast.Subscribe(b)

	input, err := bcast.Run(ctx)
	require.NoError(t, err)

	for i := range 3 {
		input <- i
	}

	cancel()
	bcast.Wait()

	assert.Len(t, a, 3)
	assert.Len(t, b, 3)
	assert.Zero(t, bcast.Dropped())
}

func TestBroadcaster_DropsWhenSubscriberFull(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	full := make(chan int, 1)

	bcast := channels.NewBroadcaster[int]()
	bcast.Subscribe(full)

	input, err := bcast.Run(ctx)
	require.NoError(t, err)

	for i := range 5 {
		input <- i
	}

	cancel()
	bcast.Wait()

	assert.Len(t, full, 1)
	assert.Equal(t, int64(4), bcast.Dropped())
}

func TestBroadcaster_RequiresSubscribers(t *testing.T) {
	t.Parallel()

	bcast := channels.NewBroadcaster[int]()
	_, err := bcast.Run(context.Background())
	assert.Error(t, err)
}

func TestBroadcaster_DoubleRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bcast := channels.NewBroadcaster[int]()
	bcast.Subscribe(make(chan int, 1))

	_, err := bcast.Run(ctx)
	require.NoError(t, err)

	_, err = bcast.Run(ctx)
	assert.Error(t, err)
}

func TestSendNonBlock(t *testing.T) {
	t.Parallel()

	ch := make(chan string, 1)
	require.NoError(t, channels.SendNonBlock(ch, "first"))
	assert.ErrorIs(t, channels.SendNonBlock(ch, "second"), channels.ErrChannelFull)

	closed := make(chan string)
	close(closed)
	assert.ErrorIs(t, channels.SendNonBlock(closed, "x"), channels.ErrChannelClosed)
}

func TestSendWithTimeout(t *testing.T) {
	t.Parallel()

	ch := make(chan string, 1)
	require.NoError(t, channels.SendWithTimeout(ch, "first", 10*time.Millisecond))
	assert.ErrorIs(t, channels.SendWithTimeout(ch, "second", 10*time.Millisecond), channels.ErrChannelTimeout)
}
