// Package watch restarts stack services when files under their service
// directory change. Used by `metis watch` during stack development.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// Restarter restarts services. Satisfied by *compose.Compose.
type Restarter interface {
	Restart(rc *metis_io.RuntimeContext, services []string) error
}

// DefaultDebounce collapses edit bursts: a service restarts once, this long
// after its last change.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches services/* under the stack root.
type Watcher struct {
	Root      string
	Restarter Restarter
	Debounce  time.Duration
}

func New(root string, r Restarter) *Watcher {
	return &Watcher{Root: root, Restarter: r, Debounce: DefaultDebounce}
}

func (w *Watcher) servicesDir() string {
	return filepath.Join(w.Root, "services")
}

// Watch blocks until rc.Ctx is cancelled, restarting services as their
// files change. A failed restart is logged and watching continues.
func (w *Watcher) Watch(rc *metis_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return cerr.Wrap(err, "create file watcher")
	}
	defer func() { _ = fw.Close() }()

	watched, err := w.addTree(fw)
	if err != nil {
		return err
	}
	if watched == 0 {
		return cerr.Newf("no service directories under %s to watch", w.servicesDir())
	}
	logger.Info("Watching for service changes",
		zap.String("dir", w.servicesDir()),
		zap.Int("directories", watched),
		zap.Duration("debounce", w.Debounce))

	// Per-service restart deadlines; the timer fires when the earliest one
	// is due.
	pending := make(map[string]time.Time)
	flush := time.NewTimer(w.Debounce)
	if !flush.Stop() {
		<-flush.C
	}
	defer flush.Stop()

	for {
		select {
		case <-rc.Ctx.Done():
			logger.Info("Watcher shutting down")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Newly created directories need their own watch.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.Add(ev.Name)
				}
			}

			svc := w.serviceFor(ev.Name)
			if svc == "" {
				continue
			}
			logger.Debug("Change detected",
				zap.String("service", svc),
				zap.String("path", ev.Name))
			pending[svc] = time.Now().Add(w.Debounce)
			resetTimer(flush, w.Debounce)

		case <-flush.C:
			due := takeDue(pending)
			for _, svc := range due {
				logger.Info("Restarting service", zap.String("service", svc))
				if err := w.Restarter.Restart(rc, []string{svc}); err != nil {
					logger.Warn("Restart failed",
						zap.String("service", svc),
						zap.Error(err))
				}
			}
			if next, ok := earliest(pending); ok {
				resetTimer(flush, time.Until(next))
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// addTree watches services/ and every directory below it.
func (w *Watcher) addTree(fw *fsnotify.Watcher) (int, error) {
	root := w.servicesDir()
	if _, err := os.Stat(root); err != nil {
		return 0, cerr.Wrapf(err, "stat %s", root)
	}

	count := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.Add(path); err != nil {
			return cerr.Wrapf(err, "watch %s", path)
		}
		if path != root {
			count++
		}
		return nil
	})
	return count, err
}

// serviceFor maps a changed path to the service directory that owns it.
// Paths directly under services/ (or outside it) belong to no service.
func (w *Watcher) serviceFor(path string) string {
	rel, err := filepath.Rel(w.servicesDir(), path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// takeDue removes and returns the services whose deadline has passed,
// sorted for stable restart order.
func takeDue(pending map[string]time.Time) []string {
	now := time.Now()
	var due []string
	for svc, deadline := range pending {
		if !deadline.After(now) {
			due = append(due, svc)
			delete(pending, svc)
		}
	}
	sort.Strings(due)
	return due
}

func earliest(pending map[string]time.Time) (time.Time, bool) {
	var min time.Time
	for _, t := range pending {
		if min.IsZero() || t.Before(min) {
			min = t
		}
	}
	return min, !min.IsZero()
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}
