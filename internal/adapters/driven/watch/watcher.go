// Package watch reports documents dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driven"
	"github.com/custodia-labs/coach/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DirectoryWatcher = (*Watcher)(nil)

// DefaultSettle is how long a file must stay quiet before it is reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher watches one directory (not recursively) with fsnotify.
// A burst of write events for the same file is reported once, after
// the file has been quiet for the settle period.
type Watcher struct {
	settle time.Duration
}

// New creates a watcher. A non-positive settle uses DefaultSettle.
func New(settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{settle: settle}
}

// Watch emits absolute paths of files created or written in dir.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, <-chan error, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(abs); err != nil {
		fw.Close()
		return nil, nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	paths := make(chan string)
	errs := make(chan error)
	go w.run(ctx, fw, paths, errs)
	return paths, errs, nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, paths chan<- string, errs chan<- error) {
	stop := make(chan struct{})
	ready := make(chan string)
	timers := make(map[string]*time.Timer)

	defer func() {
		close(stop)
		for _, t := range timers {
			t.Stop()
		}
		fw.Close()
		close(paths)
		close(errs)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("watch: %s %s", ev.Op, ev.Name)
			if t, exists := timers[ev.Name]; exists {
				t.Reset(w.settle)
				continue
			}
			name := ev.Name
			timers[name] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- name:
				case <-stop:
				}
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}

		case name := <-ready:
			delete(timers, name)
			if !isRegularFile(name) {
				continue
			}
			select {
			case paths <- name:
			case <-ctx.Done():
				return
			}
		}
	}
}

// relevant keeps create and write events for visible, non-temporary files.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	return !isHidden(ev.Name) && !isTemporary(ev.Name)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// isTemporary matches editor lock and partial-download files.
func isTemporary(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "~$") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasSuffix(base, ".crdownload") ||
		strings.HasSuffix(base, ".part")
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
