package collections

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle gives editors time to finish writing before a schema is re-read.
const settle = 100 * time.Millisecond

// Watch calls reload with the path of every schema file that changes until
// ctx is done. Directories are watched so replaced files keep being seen.
func Watch(ctx context.Context, paths []string, logger *zap.Logger, reload func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warn("closing schema watcher", zap.Error(err))
		}
	}()

	watched := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		watched[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		dirs[dir] = true
		logger.Info("watching schemas", zap.String("dir", dir))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !watched[path] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			time.Sleep(settle)
			if _, err := os.Stat(path); err != nil {
				logger.Warn("schema file gone, keeping current collection", zap.String("path", path))
				continue
			}
			logger.Info("schema changed", zap.String("path", path), zap.String("op", event.Op.String()))
			reload(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("schema watcher error", zap.Error(err))
		}
	}
}
