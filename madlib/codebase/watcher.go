package codebase

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls the project's source files and keeps the codebase in
// sync with the disk. Files that are open in an editor are skipped; the
// editor owns their content.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	stopOnce     sync.Once
	pollInterval time.Duration
	modTimes     map[string]time.Time

	mu       sync.Mutex
	open     map[string]bool
	onChange func(path string)
}

func NewFileWatcher(c *Codebase, interval time.Duration) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
		open:         make(map[string]bool),
	}
}

// OnChange registers fn to be called after a file was rescanned or
// removed.
func (w *FileWatcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// SetOpen marks path as owned by an editor.
func (w *FileWatcher) SetOpen(path string, open bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if open {
		w.open[path] = true
	} else {
		delete(w.open, path)
	}
}

// Prime records the current modification times without rescanning, for
// use right after Codebase.ScanAll.
func (w *FileWatcher) Prime() {
	paths, err := w.codebase.Project().SourceFiles()
	if err != nil {
		return
	}
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil {
			w.modTimes[path] = info.ModTime()
		}
	}
}

// Start polls in the background until Stop is called.
func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Scan()
		}
	}
}

// Scan runs a single poll and returns the paths that changed.
func (w *FileWatcher) Scan() []string {
	paths, err := w.codebase.Project().SourceFiles()
	if err != nil {
		log.Warningf("watch %s: %s", w.codebase.RootDir(), err)
		return nil
	}

	w.mu.Lock()
	open := make(map[string]bool, len(w.open))
	for p := range w.open {
		open[p] = true
	}
	notify := w.onChange
	w.mu.Unlock()

	var changed []string
	current := make(map[string]bool, len(paths))
	for _, path := range paths {
		current[path] = true
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		lastMod, known := w.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			continue
		}
		w.modTimes[path] = info.ModTime()
		if open[path] {
			continue
		}
		if _, err := w.codebase.ScanFile(path); err != nil {
			log.Warningf("rescan %s: %s", path, err)
			continue
		}
		changed = append(changed, path)
	}

	for path := range w.modTimes {
		if !current[path] {
			delete(w.modTimes, path)
			if !open[path] {
				w.codebase.RemoveFile(path)
				changed = append(changed, path)
			}
		}
	}

	for _, path := range changed {
		log.Debugf("file changed: %s", path)
		if notify != nil {
			notify(path)
		}
	}
	return changed
}
