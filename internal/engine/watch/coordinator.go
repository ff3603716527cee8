// Package watch re-runs a task whenever its watched inputs change.
package watch

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"go.trai.ch/pax/internal/core/ports"
)

// PollInterval is how often a session checks the coordinator for a pending
// cancellation request.
const PollInterval = 100 * time.Millisecond

// Coordinator fans one interrupt out to every attached watch session. The
// cancellation flag is monotone: once requested it stays set for the lifetime
// of the process.
type Coordinator struct {
	logger ports.Logger

	mu        sync.Mutex
	active    int
	cancelled bool
	installed bool
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(logger ports.Logger) *Coordinator {
	return &Coordinator{logger: logger}
}

// Attach registers a session. The first attachment installs the process
// signal handler.
func (c *Coordinator) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active++
	if c.installed {
		return
	}
	c.installed = true

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		for range ch {
			c.RequestCancel()
		}
	}()
}

// Detach unregisters a session. The count never goes below zero.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active > 0 {
		c.active--
	}
}

// RequestCancel sets the cancellation flag for every attached session.
func (c *Coordinator) RequestCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelled = true
	if c.active > 1 {
		c.logger.Warn(fmt.Sprintf("cancelling %d active watch sessions", c.active))
	}
}

// CancelRequested reports whether an interrupt was received.
func (c *Coordinator) CancelRequested() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Active returns the number of attached sessions.
func (c *Coordinator) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
