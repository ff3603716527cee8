package domain

import "sync"

// StopToken is a one-shot cooperative cancellation token handed to the shell
// evaluator for a single run. Cancel may be called any number of times from
// any goroutine but only the first call has an effect; the token is never
// reused across restarts.
type StopToken struct {
	once sync.Once
	done chan struct{}
}

// NewStopToken creates a fresh, uncancelled token.
func NewStopToken() *StopToken {
	return &StopToken{
		done: make(chan struct{}),
	}
}

// Cancel requests cooperative termination of the run holding this token.
func (t *StopToken) Cancel() {
	t.once.Do(func() {
		close(t.done)
	})
}

// Done returns a channel that is closed once cancellation was requested.
func (t *StopToken) Done() <-chan struct{} {
	return t.done
}

// Cancelled reports whether cancellation was requested.
func (t *StopToken) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
