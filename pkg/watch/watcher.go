package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bubu-hq/verifier/pkg/telemetry/logging"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches batch files for changes.
// It implements debouncing so an editor's save burst yields one callback.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *logging.Logger
	config   *FileWatcherConfig
	debounce *Debouncer

	// file is set when Path names a single file; its directory is watched
	// instead so atomic renames by editors are still seen.
	file string

	mu      sync.Mutex
	running bool
	pending map[string]struct{}
}

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Path is the batch file or directory to watch
	Path string

	// DebounceInterval is the quiet period before the callback fires
	// (default: 100ms)
	DebounceInterval time.Duration

	// Extensions limits directory watches to these file extensions
	Extensions []string

	// SkipHidden ignores dot files and directories
	SkipHidden bool
}

// DefaultFileWatcherConfig returns the default watcher configuration.
func DefaultFileWatcherConfig() *FileWatcherConfig {
	return &FileWatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".json", ".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewFileWatcher creates a new file watcher. The path must exist.
func NewFileWatcher(config *FileWatcherConfig, logger *logging.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultFileWatcherConfig()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	info, err := os.Stat(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to watch path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:  watcher,
		logger:   logger.WithComponent("watch.files"),
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		pending:  make(map[string]struct{}),
	}
	if !info.IsDir() {
		fw.file = filepath.Clean(config.Path)
	}

	return fw, nil
}

// Watch blocks until ctx is cancelled, calling onChange with the sorted set
// of changed files after each debounced burst. The watcher is closed on
// return.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(paths []string)) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	fw.running = true
	fw.mu.Unlock()

	defer func() {
		fw.debounce.Stop()
		_ = fw.watcher.Close()
	}()

	if err := fw.addPath(); err != nil {
		return fmt.Errorf("failed to watch path: %w", err)
	}

	fw.logger.Info("file watcher started",
		"path", fw.config.Path,
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create == fsnotify.Create && fw.file == "" {
				fw.watchNewDirectory(event.Name)
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("file event detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			fw.mu.Lock()
			fw.pending[filepath.Clean(event.Name)] = struct{}{}
			fw.mu.Unlock()

			fw.debounce.Trigger(func() {
				if paths := fw.drain(); len(paths) > 0 {
					onChange(paths)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Continue watching despite errors
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *FileWatcher) drain() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	paths := make([]string, 0, len(fw.pending))
	for p := range fw.pending {
		paths = append(paths, p)
	}
	fw.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}

func (fw *FileWatcher) addPath() error {
	if fw.file != "" {
		return fw.watcher.Add(filepath.Dir(fw.file))
	}
	return fw.addDirectory(fw.config.Path)
}

// addDirectory adds a directory and all subdirectories to the watcher.
func (fw *FileWatcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if fw.config.SkipHidden && isHidden(path) && path != dir {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := fw.watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", path, err)
			}
			fw.logger.Debug("watching directory", "path", path)
		}

		return nil
	})
}

func (fw *FileWatcher) watchNewDirectory(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if fw.config.SkipHidden && isHidden(path) {
		return
	}
	if err := fw.addDirectory(path); err != nil {
		fw.logger.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

// shouldProcessEvent determines if an event should trigger re-validation.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	if fw.file != "" {
		return filepath.Clean(event.Name) == fw.file
	}

	if fw.config.SkipHidden && isHidden(event.Name) {
		return false
	}
	return fw.hasValidExtension(strings.ToLower(filepath.Ext(event.Name)))
}

// hasValidExtension checks if a file extension should be watched.
func (fw *FileWatcher) hasValidExtension(ext string) bool {
	for _, validExt := range fw.config.Extensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// Debouncer collects rapid events and runs the latest callback only after a
// quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger (re)starts the quiet period with callback as the pending action.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		if d.stopped {
			cb = nil
		}
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
