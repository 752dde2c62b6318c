// Package watcher reports changes to individual files.
//
// Files are watched through their parent directory so that editors which
// save by writing a temporary file and renaming it over the original are
// still observed. Bursts of events for the same file are coalesced and
// delivered once the file has been quiet for the debounce interval.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/termcore/internal/logging"
)

// Errors returned by Watcher.
var (
	ErrWatcherClosed = errors.New("watcher: closed")
	ErrNotWatching   = errors.New("watcher: path not watched")
)

// DefaultDebounce is the quiet period before an event is delivered.
const DefaultDebounce = 100 * time.Millisecond

// Operation is the kind of change observed.
type Operation int

const (
	OpWrite Operation = iota
	OpCreate
	OpRemove
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event describes a change to a watched file.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler is called with each debounced event.
type Handler func(Event)

// Watcher monitors a set of files for changes.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	handlers []Handler
	debounce time.Duration
	logger   *logging.Logger
	now      func() time.Time

	pending map[string]Event

	started bool
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce interval. Zero delivers events
// immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = logging.OrNull(l).WithComponent("watcher")
	}
}

// New creates a watcher. Call Start to begin delivering events.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: DefaultDebounce,
		logger:   logging.NullLogger,
		now:      time.Now,
		pending:  make(map[string]Event),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file. The file need not exist yet but its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	w.logger.Debug("watching %s", abs)
	return nil
}

// Unwatch removes a file.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if !w.files[abs] {
		return ErrNotWatching
	}
	delete(w.files, abs)
	delete(w.pending, abs)

	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// WatchedFiles returns the absolute paths being watched.
func (w *Watcher) WatchedFiles() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// OnChange registers a handler.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins processing events. It is a no-op if already started.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.processLoop()
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.queue(ev) {
				continue
			}
			if w.debounce == 0 {
				w.flush()
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.flush()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify: %v", err)
		}
	}
}

// queue records ev if it concerns a watched file and reports whether it
// did.
func (w *Watcher) queue(ev fsnotify.Event) bool {
	op, ok := convertOp(ev.Op)
	if !ok {
		return false
	}
	path := filepath.Clean(ev.Name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.files[path] {
		return false
	}
	next := Event{Path: path, Op: op, Time: w.now()}
	if existing, ok := w.pending[path]; ok {
		next.Op = coalesce(existing.Op, op)
	}
	w.pending[path] = next
	return true
}

// coalesce merges two operations on the same file. Removal wins, creation
// survives later writes, and the latest operation wins otherwise.
func coalesce(prev, next Operation) Operation {
	switch {
	case next == OpRemove:
		return OpRemove
	case next == OpWrite && prev == OpCreate:
		return OpCreate
	case next == OpCreate && prev == OpRemove:
		return OpWrite
	default:
		return next
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	events := make([]Event, 0, len(w.pending))
	for path, ev := range w.pending {
		events = append(events, ev)
		delete(w.pending, path)
	}
	handlers := append([]Handler(nil), w.handlers...)
	w.mu.Unlock()

	for _, ev := range events {
		w.logger.Debug("%s %s", ev.Op, ev.Path)
		for _, h := range handlers {
			w.safeCall(h, ev)
		}
	}
}

func (w *Watcher) safeCall(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("handler panic on %s: %v", ev.Path, r)
		}
	}()
	h(ev)
}

func convertOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove, true
	case op.Has(fsnotify.Rename):
		return OpRename, true
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpWrite, true
	default:
		return 0, false
	}
}
