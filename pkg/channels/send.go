package channels

import "time"

// SendNonBlock attempts a send without blocking. Returns ErrChannelFull if
// the channel is full, ErrChannelClosed if it is closed.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// SendWithTimeout sends a message, giving up after the timeout.
func SendWithTimeout[T any](ch chan<- T, msg T, timeout time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	case <-time.After(timeout):
		return ErrChannelTimeout
	}
}
