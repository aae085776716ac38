package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/comply/internal/core/ports/driven"
	"github.com/custodia-labs/comply/internal/logger"
)

// reloadOps are the file operations that invalidate cached prompts.
const reloadOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// PromptWatcher reloads a prompt store whenever a prompt file in its
// directory changes on disk.
type PromptWatcher struct {
	store driven.PromptStore
	dir   string
}

// NewPromptWatcher creates a watcher for the prompt files under dir.
func NewPromptWatcher(store driven.PromptStore, dir string) *PromptWatcher {
	return &PromptWatcher{store: store, dir: dir}
}

// Run watches the prompt directory until ctx is cancelled.
// The directory is created if it does not exist yet.
func (w *PromptWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Debug("watching prompts in %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleFsEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// handleFsEvent reloads the store for changes to prompt files and reports
// whether it did.
func (w *PromptWatcher) handleFsEvent(event fsnotify.Event) bool {
	if event.Op&reloadOps == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || filepath.Ext(name) != ".txt" {
		return false
	}

	w.store.Reload()
	logger.Debug("prompt %s changed, cache cleared", strings.TrimSuffix(name, ".txt"))
	return true
}
