package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
)

const (
	// DebounceWindow is the quiet window after an accepted trigger during
	// which further events are discarded.
	DebounceWindow = 500 * time.Millisecond

	// GracePeriod is the pause between a cooperative cancel and the restart,
	// giving the superseded command time to release its resources.
	GracePeriod = 100 * time.Millisecond
)

// RunFunc executes the watched task once. restart is true for every
// execution after the first; restarted runs bypass the cache gate.
type RunFunc func(ctx context.Context, stop *domain.StopToken, restart bool) error

// Config assembles a watch session.
type Config struct {
	// TaskName is the display name of the watched task.
	TaskName string

	// Workdir is the directory input patterns resolve against.
	Workdir string

	// Patterns are the task's input patterns. A session without patterns
	// runs the task exactly once.
	Patterns []string

	Run         RunFunc
	NewWatcher  ports.WatcherFactory
	Logger      ports.Logger
	Coordinator *Coordinator

	// Out receives the restart notices; defaults to stdout.
	Out io.Writer

	// Debounce, Grace and Poll override the session timing; zero values take
	// the defaults.
	Debounce time.Duration
	Grace    time.Duration
	Poll     time.Duration
}

// Session re-runs one task whenever its watched inputs change. At most one
// run is in flight at a time; a restart supersedes the prior run entirely.
type Session struct {
	cfg Config
}

// NewSession creates a Session from the config, applying timing defaults.
func NewSession(cfg Config) *Session {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DebounceWindow
	}
	if cfg.Grace == 0 {
		cfg.Grace = GracePeriod
	}
	if cfg.Poll == 0 {
		cfg.Poll = PollInterval
	}
	return &Session{cfg: cfg}
}

// Run drives the session until an interrupt, a terminating watch failure, or
// a non-superseded failing run ends it. A session without input patterns
// ends after its single run.
func (s *Session) Run(ctx context.Context) error {
	s.cfg.Coordinator.Attach()
	defer s.cfg.Coordinator.Detach()

	if len(s.cfg.Patterns) == 0 {
		return s.runOnce(ctx)
	}

	watcher, err := s.cfg.NewWatcher(s.cfg.Workdir, s.cfg.Patterns)
	if err != nil {
		return err
	}
	defer watcher.Close() //nolint:errcheck // release on exit

	s.cfg.Logger.Info(fmt.Sprintf(
		"watching %d path(s) for task %q", len(watcher.WatchedPaths()), s.cfg.TaskName,
	))

	ticker := time.NewTicker(s.cfg.Poll)
	defer ticker.Stop()

	restart := false
	var lastAccepted time.Time

	for {
		stop := domain.NewStopToken()
		done := make(chan error, 1)
		run := s.cfg.Run
		isRestart := restart
		go func() {
			done <- run(ctx, stop, isRestart)
		}()
		restart = false

		running := true
		var runErr error

		for !restart {
			select {
			case <-ticker.C:
				if !s.cfg.Coordinator.CancelRequested() {
					continue
				}
				stop.Cancel()
				if running {
					<-done
				}
				return nil

			case err := <-done:
				running = false
				runErr = err
				done = nil

			case event, ok := <-watcher.Events():
				if !ok {
					// The watcher closes its event stream only on a
					// terminating failure.
					stop.Cancel()
					if running {
						<-done
					}
					select {
					case werr := <-watcher.Errors():
						if werr != nil {
							return werr
						}
					default:
					}
					return domain.ErrWatchClosed
				}
				if !event.Kind.Qualifies() {
					continue
				}
				now := time.Now()
				if !lastAccepted.IsZero() && now.Sub(lastAccepted) < s.cfg.Debounce {
					continue
				}
				lastAccepted = now

				if running {
					// Supersede the in-flight run; its outcome no longer
					// counts.
					stop.Cancel()
					<-done
					time.Sleep(s.cfg.Grace)
				}
				restart = true

			case err := <-watcher.Errors():
				stop.Cancel()
				if running {
					<-done
				}
				return err
			}

			if !restart && !running && runErr != nil {
				return runErr
			}
		}

		fmt.Fprintf(s.cfg.Out, "file change detected, restarting task %q\n", s.cfg.TaskName)
	}
}

// runOnce executes a no-input session: a single run that stays cancellable
// through the coordinator.
func (s *Session) runOnce(ctx context.Context) error {
	stop := domain.NewStopToken()
	done := make(chan error, 1)
	go func() {
		done <- s.cfg.Run(ctx, stop, false)
	}()

	ticker := time.NewTicker(s.cfg.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.cfg.Coordinator.CancelRequested() {
				continue
			}
			stop.Cancel()
			<-done
			return nil
		case err := <-done:
			return err
		}
	}
}
