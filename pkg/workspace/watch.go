package workspace

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/xqscope/pkg/syntax/treesitter"
)

// DefaultDebounce is the quiet period Watch waits for before reloading.
const DefaultDebounce = 250 * time.Millisecond

// Watch reloads changed module files until ctx is done. After each debounced
// batch of changes has been applied, onChange receives the affected paths in
// sorted order. A nil onChange is allowed.
func (w *Workspace) Watch(ctx context.Context, debounce time.Duration, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addWatchRecursive(watcher, w.root); err != nil {
		return err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	pending := false
	pendingPaths := map[string]bool{}

	resetDebounce := func(path string) {
		pendingPaths[path] = true
		if pending && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath := filepath.Clean(event.Name)
			if w.ignoreEvent(eventPath) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(eventPath); statErr == nil && info.IsDir() {
					_ = w.addWatchRecursive(watcher, eventPath)
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !w.hasModuleExtension(eventPath) {
				// A removed or renamed directory takes its modules with it.
				if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 || !w.loadedWithin(eventPath) {
					continue
				}
			}
			resetDebounce(eventPath)
		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			changed := make([]string, 0, len(pendingPaths))
			for path := range pendingPaths {
				changed = append(changed, path)
			}
			sort.Strings(changed)
			pendingPaths = map[string]bool{}
			w.apply(ctx, changed)
			if onChange != nil {
				onChange(changed)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

// apply reloads or removes each changed path.
func (w *Workspace) apply(ctx context.Context, changed []string) {
	for _, path := range changed {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			for _, removed := range w.RemoveTree(path) {
				w.logger.Info("module removed", slog.String("path", removed))
			}
			continue
		}
		if _, err := w.LoadFile(ctx, path); err != nil {
			if errors.Is(err, treesitter.ErrNoGrammar) {
				continue
			}
			w.logger.Warn("reload failed", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		w.logger.Info("module reloaded", slog.String("path", path))
	}
}

func (w *Workspace) addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(filepath.Clean(root), func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if w.skip(path, true) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (w *Workspace) ignoreEvent(path string) bool {
	base := filepath.Base(path)
	if base == ".DS_Store" || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") || strings.HasPrefix(base, ".#") {
		return true
	}
	return w.skip(path, false)
}
