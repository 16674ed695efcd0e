// Package watch reloads when files under filesystem pack roots change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"tintcore/internal/logging"
	"tintcore/internal/reload"
)

// DefaultDebounce applies when the configured window is zero.
const DefaultDebounce = 250 * time.Millisecond

// Firer runs one reload cycle. reload.Trigger implements it.
type Firer interface {
	Fire(ctx context.Context) (reload.Report, bool, error)
}

// Watcher coalesces file events into reload cycles. A cycle starts once no
// event has arrived for the debounce window.
type Watcher struct {
	roots    []string
	fire     Firer
	debounce time.Duration
	log      logging.Logger
	onReload func(reload.Report, error)
	fsw      *fsnotify.Watcher
}

type Option func(*Watcher)

func WithLogger(l logging.Logger) Option { return func(w *Watcher) { w.log = logging.OrNoop(l) } }

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnReload registers a callback invoked after every cycle the watcher starts.
func OnReload(fn func(reload.Report, error)) Option { return func(w *Watcher) { w.onReload = fn } }

// New prepares a watcher over roots. Nothing is watched until Run.
func New(roots []string, fire Firer, opts ...Option) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, errors.New("watch: no filesystem pack roots")
	}
	w := &Watcher{roots: roots, fire: fire, debounce: DefaultDebounce, log: logging.Noop()}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is done. The returned error is nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()
	w.fsw = fsw
	for _, root := range w.roots {
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}
	w.log.Info("watching packs", "roots", strings.Join(w.roots, ","), "debounce", w.debounce.String())
	w.loop(ctx, fsw.Events, fsw.Errors)
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.log.Debug("pack file changed", "path", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) && w.fsw != nil {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(ev.Name); err != nil {
						w.log.Warn("failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		case <-timerC:
			timerC = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	report, shared, err := w.fire.Fire(ctx)
	if err != nil {
		w.log.Error("hot reload failed", "cycle", report.ID.String(), "error", err)
	} else {
		w.log.Info("hot reload finished", "cycle", report.ID.String(), "shared", shared, "duration", report.Duration.String())
	}
	if w.onReload != nil {
		w.onReload(report, err)
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return !ignored(ev.Name)
}

// ignored filters editor droppings and hidden entries.
func ignored(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp")
}
