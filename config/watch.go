package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the config file on change. It watches the parent directory
// so editors that replace the file via rename are still picked up.
type Watcher struct {
	Path     string
	Cooldown time.Duration // minimum gap between two reloads; changes inside it load when it ends
}

// Start blocks until ctx is done. onUpdate receives every config that loads
// and validates; onError receives load failures and watcher errors.
func (w Watcher) Start(ctx context.Context, onUpdate func(AppConfig), onError func(error)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.Path)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	var (
		lastReload time.Time
		trailing   *time.Timer
		trailingC  <-chan time.Time
	)
	defer func() {
		if trailing != nil {
			trailing.Stop()
		}
	}()
	reload := func() {
		cfg, err := LoadWithEnvOverrides(target)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		lastReload = time.Now()
		if onUpdate != nil {
			onUpdate(cfg)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			// 只处理写入和创建事件
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if trailing != nil {
				continue
			}
			// 冷却期内的变更推迟到冷却结束时再加载一次
			if wait := w.Cooldown - time.Since(lastReload); w.Cooldown > 0 && wait > 0 {
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
				continue
			}
			reload()
		case <-trailingC:
			trailing, trailingC = nil, nil
			reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
