// Package watch implements fae's file watcher: a recursive fsnotify-backed
// monitor with debounced create/update/delete coalescing (spec.md §4.3).
// Grounded on the teacher's internal/indexing/watcher.go, generalized from a
// callback-based design tied to one MasterIndex into a bus actor emitting
// DetectFile{Create,Update,Delete} messages.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ktnyt/fae-sub001/internal/debug"
	"github.com/ktnyt/fae-sub001/internal/ignore"
	"github.com/ktnyt/fae-sub001/internal/message"
)

const defaultDebounce = 100 * time.Millisecond

// Options configures a Watcher. All fields are constructor parameters per
// spec.md §6; there are no environment variables or config files.
type Options struct {
	Root        string
	DebounceMs  int // 0 uses the 100ms default (spec.md §4.3)
	Ignore      *ignore.Matcher
	ShouldWatch func(path string, isDir bool) bool // optional extra filter (e.g. extension allow-list)
}

// Stats mirrors the teacher's WatchStats (internal/indexing/watcher.go).
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
}

// Watcher monitors Options.Root recursively and emits debounced
// DetectFile{Create,Update,Delete} messages on Events().
type Watcher struct {
	opts Options
	log  *debug.Logger

	fsw *fsnotify.Watcher

	debounce  time.Duration
	mu        sync.Mutex
	pending   map[string]message.FileOpKind
	createdAt map[string]bool // tracks paths whose pending op originated as a Create (spec.md coalescing rule)
	timer     *time.Timer

	out  chan message.Message
	stop chan struct{}
	wg   sync.WaitGroup

	statsMu sync.RWMutex
	stats   Stats
}

// New creates a Watcher. Call Start to begin watching.
func New(opts Options, log *debug.Logger) (*Watcher, error) {
	if log == nil {
		log = debug.New("[watch] ", false)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := defaultDebounce
	if opts.DebounceMs > 0 {
		debounce = time.Duration(opts.DebounceMs) * time.Millisecond
	}

	return &Watcher{
		opts:      opts,
		log:       log,
		fsw:       fsw,
		debounce:  debounce,
		pending:   make(map[string]message.FileOpKind),
		createdAt: make(map[string]bool),
		out:       make(chan message.Message, 256),
		stop:      make(chan struct{}),
	}, nil
}

// Events returns the channel of debounced DetectFile* messages.
func (w *Watcher) Events() <-chan message.Message { return w.out }

// Start adds recursive watches under Root and begins processing fsnotify
// events. Symlink loops are avoided by tracking visited real paths, mirroring
// the teacher's addWatches.
func (w *Watcher) Start() error {
	if err := w.addWatches(w.opts.Root); err != nil {
		return err
	}
	w.wg.Add(1)
	go w.processEvents()
	return nil
}

// Stop halts watching, waits for goroutines, and closes Events().
func (w *Watcher) Stop() error {
	close(w.stop)
	err := w.fsw.Close()
	w.wg.Wait()
	close(w.out)
	return err
}

func (w *Watcher) addWatches(root string) error {
	visited := make(map[string]bool)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // transient I/O: skip and continue (spec.md §7)
		}
		if !info.IsDir() {
			return nil
		}

		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil // dangling symlink: produce no event
		}
		if visited[real] {
			return filepath.SkipDir // symlink loop guard
		}
		visited[real] = true

		relPath, relErr := filepath.Rel(w.opts.Root, path)
		if relErr == nil && w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnore(relPath, true) {
			return filepath.SkipDir
		}

		if err := w.fsw.Add(path); err != nil {
			w.log.Warnf("watch: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.incrementErrors()
			w.log.Warnf("watch: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name

	info, err := os.Stat(path)
	if err != nil {
		if ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0 {
			if w.shouldProcess(path, false) {
				w.addEvent(path, message.FileOpDelete)
			}
		}
		return
	}

	if info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			relPath, relErr := filepath.Rel(w.opts.Root, path)
			ignored := relErr == nil && w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnore(relPath, true)
			if !ignored {
				if err := w.fsw.Add(path); err != nil {
					w.log.Warnf("watch: failed to add watch for new directory %s: %v", path, err)
				}
			}
		}
		return
	}

	if !w.shouldProcess(path, false) {
		return
	}

	var kind message.FileOpKind
	switch {
	case ev.Op&fsnotify.Create != 0:
		kind = message.FileOpCreate
	case ev.Op&fsnotify.Write != 0:
		kind = message.FileOpUpdate
	case ev.Op&fsnotify.Rename != 0:
		kind = message.FileOpUpdate
	default:
		return
	}
	w.addEvent(path, kind)
}

func (w *Watcher) shouldProcess(path string, isDir bool) bool {
	relPath, err := filepath.Rel(w.opts.Root, path)
	if err == nil && w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnore(relPath, isDir) {
		return false
	}
	if w.opts.ShouldWatch != nil {
		return w.opts.ShouldWatch(path, isDir)
	}
	return true
}

// addEvent applies the coalescing rule from spec.md §3's FileOperation
// invariant: a later event for the same path supersedes an earlier one,
// except that an Update following a Create within the debounce window
// remains a Create.
func (w *Watcher) addEvent(path string, kind message.FileOpKind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if kind == message.FileOpCreate {
		w.createdAt[path] = true
	}
	if kind == message.FileOpUpdate && w.createdAt[path] {
		kind = message.FileOpCreate
	}
	if kind == message.FileOpDelete {
		delete(w.createdAt, path)
	}

	w.pending[path] = kind

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]message.FileOpKind)
	w.createdAt = make(map[string]bool)
	w.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	for path, kind := range pending {
		select {
		case w.out <- message.NewDetectFile(kind, path):
			w.incrementEvents()
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) incrementEvents() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.EventsProcessed++
	w.stats.LastEventTime = time.Now()
}

func (w *Watcher) incrementErrors() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ErrorCount++
}

// Stats returns a snapshot of current watch statistics (teacher
// internal/indexing/watcher.go's WatchStats, supplemented per SPEC_FULL.md).
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}
