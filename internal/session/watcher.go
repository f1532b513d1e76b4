package session

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// SeedWatcher watches the seed source file and delivers its new
// contents after a debounce window. Editors typically replace files
// by rename, so the watcher covers the parent directory and filters
// events down to the seed path.
type SeedWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(source string)
	logger   zerolog.Logger

	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
	stopped  bool
}

// WatchSeed starts watching path and calls onChange with the file
// contents after each change settles.
func WatchSeed(path string, onChange func(source string), logger zerolog.Logger) (*SeedWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &SeedWatcher{
		path:     abs,
		watcher:  w,
		onChange: onChange,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	go sw.loop()

	logger.Info().Str("path", abs).Msg("watching seed file")
	return sw, nil
}

// SetDebounce adjusts the debounce window.
func (sw *SeedWatcher) SetDebounce(d time.Duration) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.debounce = d
}

func (sw *SeedWatcher) loop() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			sw.logger.Debug().Str("op", event.Op.String()).Msg("seed file changed")
			sw.schedule()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Error().Err(err).Msg("seed watcher error")

		case <-sw.stopCh:
			return
		}
	}
}

func (sw *SeedWatcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == sw.path
}

// schedule resets the debounce timer so bursts of events collapse
// into one reload.
func (sw *SeedWatcher) schedule() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.stopped {
		return
	}
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounce, sw.fire)
}

func (sw *SeedWatcher) fire() {
	data, err := os.ReadFile(sw.path)
	if err != nil {
		// A missing file means the seed was removed mid-replacement;
		// the next write will fire again.
		sw.logger.Warn().Err(err).Msg("seed file unreadable, keeping current seed")
		return
	}

	sw.logger.Info().Int("bytes", len(data)).Msg("seed file reloaded")
	sw.onChange(string(data))
}

// Close stops the watcher.
func (sw *SeedWatcher) Close() error {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return nil
	}
	sw.stopped = true
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.mu.Unlock()

	close(sw.stopCh)
	return sw.watcher.Close()
}
