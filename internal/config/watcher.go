package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives each successfully reloaded configuration.
type ChangeHandler func(Config)

// ErrorHandler receives reload and watch failures. The previous
// configuration stays in effect after a failure.
type ErrorHandler func(error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long file events must be quiet before a reload.
// Editors tend to emit bursts of writes and renames for a single save.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher follows one configuration file and reloads it on change.
type Watcher struct {
	path     string
	debounce time.Duration
	fw       *fsnotify.Watcher

	mu       sync.Mutex
	onChange []ChangeHandler
	onError  []ErrorHandler
	timer    *time.Timer

	wg sync.WaitGroup
}

// NewWatcher creates a watcher for the given config file. The file's
// directory is watched rather than the file itself, so saves that
// replace the file by rename are still observed.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: 100 * time.Millisecond,
		fw:       fw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// OnChange registers a handler for reloaded configurations.
func (w *Watcher) OnChange(fn ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// OnError registers a handler for reload failures.
func (w *Watcher) OnError(fn ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = append(w.onError, fn)
}

// Start begins delivering reloads. It returns immediately.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop shuts the watcher down and waits for in-flight delivery.
func (w *Watcher) Stop() error {
	err := w.fw.Close()
	w.wg.Wait()
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.emitError(err)
		}
	}
}

// scheduleReload arms the debounce timer, restarting it if a burst of
// events is still in progress.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.emitError(err)
		return
	}
	w.mu.Lock()
	handlers := make([]ChangeHandler, len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(cfg)
	}
}

func (w *Watcher) emitError(err error) {
	w.mu.Lock()
	handlers := make([]ErrorHandler, len(w.onError))
	copy(handlers, w.onError)
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(err)
	}
}
