package watch

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"go.trai.ch/pax/internal/core/domain"
)

// Guard controls whether an interrupt terminates the process immediately.
// While a child command is running the exit is suppressed so the signal
// reaches the child's process group first; between commands an interrupt
// exits with the conventional code.
type Guard struct {
	installOnce     sync.Once
	exitOnInterrupt atomic.Bool
}

// NewGuard creates a Guard in the exit-on-interrupt state.
func NewGuard() *Guard {
	g := &Guard{}
	g.exitOnInterrupt.Store(true)
	return g
}

// Install registers the process signal handler. Safe to call repeatedly.
func (g *Guard) Install() {
	g.installOnce.Do(func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		go func() {
			for range ch {
				if g.exitOnInterrupt.Load() {
					os.Exit(domain.ExitCodeInterrupted)
				}
			}
		}()
	})
}

// Suppress disables exit-on-interrupt while a child command runs.
func (g *Guard) Suppress() {
	g.exitOnInterrupt.Store(false)
}

// Allow re-enables exit-on-interrupt between commands.
func (g *Guard) Allow() {
	g.exitOnInterrupt.Store(true)
}
