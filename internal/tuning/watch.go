package tuning

import (
	"os"
	"sync"
	"time"
)

type fileStamp struct {
	mtime time.Time
	size  int64
}

// FileWatcher polls the tuning files and reports changes once per scan, so a
// default and a profile saved together trigger a single reload. A file that
// appears, disappears, or changes mtime or size counts as changed.
type FileWatcher struct {
	Paths    []string
	Interval time.Duration

	onChange func(changed []string)
	seen     map[string]fileStamp
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewFileWatcher(paths []string, interval time.Duration, onChange func(changed []string)) *FileWatcher {
	return &FileWatcher{
		Paths:    paths,
		Interval: interval,
		onChange: onChange,
		seen:     make(map[string]fileStamp),
		stopCh:   make(chan struct{}),
	}
}

// Start records the current state, then polls in a goroutine until Stop.
func (w *FileWatcher) Start() {
	w.Scan(true)
	go func() {
		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.Scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop may be called more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// Scan compares every path against the previous scan and returns the changed
// ones. With prime set it only records state and reports nothing.
func (w *FileWatcher) Scan(prime bool) []string {
	var changed []string
	for _, p := range w.Paths {
		prev, had := w.seen[p]
		fi, err := os.Stat(p)
		if err != nil {
			if had {
				delete(w.seen, p)
				changed = append(changed, p)
			}
			continue
		}
		cur := fileStamp{mtime: fi.ModTime(), size: fi.Size()}
		if had && cur == prev {
			continue
		}
		w.seen[p] = cur
		changed = append(changed, p)
	}
	if prime {
		return nil
	}
	if len(changed) > 0 && w.onChange != nil {
		w.onChange(changed)
	}
	return changed
}
