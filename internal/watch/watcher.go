// Package watch reports changes to the alignment file so the viewer can
// reload it.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jpsank/breaker/internal/logging"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher watches individual files for writes, renames and re-creation.
type FileWatcher struct {
	mu sync.Mutex

	watcher   *fsnotify.Watcher
	files     map[string]bool // cleaned path -> watching
	dirs      map[string]int  // parent directory -> watched file count
	onChanged func(path string)
	closeOnce sync.Once
	debounce  time.Duration
	// pending holds the quiet-period timer of each path with unreported
	// changes.
	pending map[string]*pendingChange
}

type pendingChange struct {
	timer *time.Timer
}

// NewFileWatcher creates a new file watcher
func NewFileWatcher(debounce time.Duration, onChanged func(path string)) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		watcher:   watcher,
		files:     make(map[string]bool),
		dirs:      make(map[string]int),
		onChanged: onChanged,
		debounce:  debounce,
		pending:   make(map[string]*pendingChange),
	}, nil
}

// Watch starts watching path.
func (fw *FileWatcher) Watch(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.files[path] {
		return nil
	}

	// Watch the parent directory instead of the file itself. Editors save by
	// writing a temp file and renaming it over the original, which drops an
	// inode watch.
	dir := filepath.Dir(path)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}
	fw.dirs[dir]++
	fw.files[path] = true
	return nil
}

// Unwatch stops watching path.
func (fw *FileWatcher) Unwatch(path string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[path] {
		return
	}
	delete(fw.files, path)
	if p, ok := fw.pending[path]; ok {
		p.timer.Stop()
		delete(fw.pending, path)
	}

	dir := filepath.Dir(path)
	fw.dirs[dir]--
	if fw.dirs[dir] <= 0 {
		delete(fw.dirs, dir)
		_ = fw.watcher.Remove(dir)
	}
}

// Run processes file system events until the context is canceled or the
// watcher closes. A path is reported once no event has arrived for it for
// the debounce period, so a burst of writes yields one callback after the
// last one.
func (fw *FileWatcher) Run(ctx context.Context) error {
	defer fw.stopPending()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(event.Name)

			fw.mu.Lock()
			if !fw.files[path] {
				fw.mu.Unlock()
				continue
			}
			fw.schedule(path)
			fw.mu.Unlock()

			logging.Debug("watch: %s changed (%s)", path, event.Op)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch: %v", err)
		}
	}
}

// schedule restarts the quiet period for path. Callers hold fw.mu.
func (fw *FileWatcher) schedule(path string) {
	if p, ok := fw.pending[path]; ok {
		p.timer.Stop()
	}
	p := &pendingChange{}
	p.timer = time.AfterFunc(fw.debounce, func() { fw.fire(path, p) })
	fw.pending[path] = p
}

func (fw *FileWatcher) fire(path string, p *pendingChange) {
	fw.mu.Lock()
	if fw.pending[path] != p {
		// Superseded by a later event.
		fw.mu.Unlock()
		return
	}
	delete(fw.pending, path)
	watching := fw.files[path]
	fw.mu.Unlock()

	if watching && fw.onChanged != nil {
		fw.onChanged(path)
	}
}

func (fw *FileWatcher) stopPending() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	for path, p := range fw.pending {
		p.timer.Stop()
		delete(fw.pending, path)
	}
}

// Close stops the watcher and releases resources
func (fw *FileWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		fw.stopPending()
		err = fw.watcher.Close()
	})
	return err
}

// IsWatching reports whether path is being watched.
func (fw *FileWatcher) IsWatching(path string) bool {
	path, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.files[path]
}
