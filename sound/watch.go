// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ik5/audmix/internal/log"
)

// Watch evicts cached sounds whose files change on disk until ctx is
// done. Only the top level of each existing resource directory is
// watched. It returns nil when ctx ends.
func (l *Loader) Watch(ctx context.Context) error {
	if l.cache == nil {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	watched := 0
	for _, dir := range l.res.Dirs() {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		if err := w.Add(abs); err != nil {
			return fmt.Errorf("watching %s: %w", abs, err)
		}
		watched++
	}
	l.logger.Debug("watching resource directories", "count", watched)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if _, cached := l.cache.Get(ev.Name); cached {
				l.cache.Delete(ev.Name)
				l.logger.Info("sound changed, dropped from cache", "path", ev.Name, "op", ev.Op.String())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("resource watcher error", log.Err(err))
		}
	}
}
