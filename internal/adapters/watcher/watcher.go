package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/pax/internal/core/domain"
	"go.trai.ch/pax/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileWatcher = (*FileWatcher)(nil)

// shouldSkipDirectories are directories that should not be watched.
var shouldSkipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".pax":         true,
	"node_modules": true,
}

const eventChannelBuffer = 100

// FileWatcher watches the resolved input paths of a task using fsnotify.
// Directories are watched recursively, plain files individually. Any single
// watch-installation failure aborts construction entirely.
type FileWatcher struct {
	fw      *fsnotify.Watcher
	events  chan ports.WatchEvent
	errs    chan error
	watched []string

	closeOnce sync.Once
}

// New resolves the patterns against workdir and installs OS watches for the
// resulting paths.
func New(workdir string, patterns []string) (*FileWatcher, error) {
	paths, err := ResolveWatchPaths(workdir, patterns)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(domain.ErrWatchInstall, err.Error())
	}

	w := &FileWatcher{
		fw:     fw,
		events: make(chan ports.WatchEvent, eventChannelBuffer),
		errs:   make(chan error, 1),
	}

	for _, path := range paths {
		if err := w.install(path); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	go w.processEvents()

	return w, nil
}

// install adds one watch root: recursive for directories, single for files.
func (w *FileWatcher) install(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		// Resolution already fell back to an existing ancestor; a path
		// vanishing between resolution and installation is an install
		// failure.
		return zerr.With(zerr.Wrap(domain.ErrWatchInstall, err.Error()), "path", path)
	}

	if !info.IsDir() {
		if err := w.fw.Add(path); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrWatchInstall, err.Error()), "path", path)
		}
		w.watched = append(w.watched, path)
		return nil
	}

	for dir := range walkDirectories(path) {
		if err := w.fw.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrWatchInstall, err.Error()), "path", dir)
		}
		w.watched = append(w.watched, dir)
	}
	return nil
}

// Events yields change notifications until the watcher is closed.
func (w *FileWatcher) Events() <-chan ports.WatchEvent {
	return w.events
}

// Errors yields terminating watch failures.
func (w *FileWatcher) Errors() <-chan error {
	return w.errs
}

// WatchedPaths returns the concrete roots being watched.
func (w *FileWatcher) WatchedPaths() []string {
	return w.watched
}

// Close releases all OS watches.
func (w *FileWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fw.Close()
	})
	return err
}

func (w *FileWatcher) processEvents() {
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}

			kind := convertOp(event.Op)
			if kind == ports.WatchOther {
				continue
			}

			w.events <- ports.WatchEvent{
				Kind:  kind,
				Paths: []string{event.Name},
			}

			// A directory created under a watched root must itself be
			// watched for the stream to stay complete.
			if kind == ports.WatchCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !shouldSkipDirectories[info.Name()] {
					for dir := range walkDirectories(event.Name) {
						_ = w.fw.Add(dir)
					}
				}
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- zerr.Wrap(domain.ErrWatchClosed, err.Error()):
			default:
			}
			return
		}
	}
}

func convertOp(op fsnotify.Op) ports.WatchKind {
	switch {
	case op.Has(fsnotify.Create):
		return ports.WatchCreate
	case op.Has(fsnotify.Write):
		return ports.WatchModify
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return ports.WatchRemove
	default:
		return ports.WatchOther
	}
}

// walkDirectories yields root and every directory below it, skipping
// directories that should never be watched.
func walkDirectories(root string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Skip unreadable directories rather than aborting the walk.
				return nil //nolint:nilerr
			}
			if !d.IsDir() {
				return nil
			}
			if shouldSkipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
