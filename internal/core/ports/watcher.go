package ports

// WatchKind classifies a file system change notification.
type WatchKind uint8

const (
	// WatchOther covers access and metadata notifications, which consumers
	// ignore. It is the zero value, so a zero WatchEvent never triggers.
	WatchOther WatchKind = iota
	// WatchCreate indicates a file or directory was created.
	WatchCreate
	// WatchModify indicates a file was modified.
	WatchModify
	// WatchRemove indicates a file or directory was removed or renamed away.
	WatchRemove
)

// Qualifies reports whether the event kind should trigger a task re-run.
func (k WatchKind) Qualifies() bool {
	return k == WatchCreate || k == WatchModify || k == WatchRemove
}

// WatchEvent is one change notification from the file watcher.
type WatchEvent struct {
	Kind  WatchKind
	Paths []string
}

// FileWatcher exposes an infinite stream of change notifications for a fixed
// set of watched roots. A terminating failure is delivered on Errors.
type FileWatcher interface {
	// Events yields change notifications until the watcher is closed.
	Events() <-chan WatchEvent
	// Errors yields terminating watch failures.
	Errors() <-chan error
	// WatchedPaths returns the concrete roots being watched.
	WatchedPaths() []string
	// Close releases all OS watches.
	Close() error
}

// WatcherFactory constructs a FileWatcher for the given working directory and
// input patterns. Injected so watch sessions can be tested without OS
// notification primitives.
type WatcherFactory func(workdir string, patterns []string) (FileWatcher, error)
