// Package watcher reports file changes using fsnotify.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mapxml/internal/core/ports/driven"
	"github.com/custodia-labs/mapxml/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.Watcher = (*Watcher)(nil)

// Watcher watches individual files. It watches each file's directory and
// filters events, so editors that replace files on save are still seen.
type Watcher struct {
	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

// New creates a watcher.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	return &Watcher{fsw: fsw}, nil
}

// Watch starts watching paths. Each write, create or rename of a watched
// file is sent as the file's path as given by the caller. The channel
// holds one pending change; changes arriving while one is pending are
// coalesced into it.
func (w *Watcher) Watch(ctx context.Context, paths ...string) (<-chan string, error) {
	wanted := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		wanted[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	changes := make(chan string, 1)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				abs, err := filepath.Abs(event.Name)
				if err != nil {
					continue
				}
				original, ok := wanted[abs]
				if !ok {
					continue
				}
				select {
				case changes <- original:
				default:
					logger.Debug("watcher: change to %s coalesced", original)
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher: %v", err)
			}
		}
	}()
	return changes, nil
}

// Close stops the watcher and closes the change channel.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() { err = w.fsw.Close() })
	return err
}
