package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"circuitpy-sync/internal/filter"
	"circuitpy-sync/internal/logger"
)

// FileWatcher turns fsnotify's per-directory notifications into a recursive
// stream of changed paths. Directories for which skipDir returns true are
// never registered, so nothing below them is reported.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	logger  *logger.Logger
	skipDir func(path string) bool
}

func New(logger *logger.Logger, skipDir func(path string) bool) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if skipDir == nil {
		skipDir = func(string) bool { return false }
	}

	return &FileWatcher{
		watcher: watcher,
		logger:  logger,
		skipDir: skipDir,
	}, nil
}

// AddRecursive registers root and every directory below it.
func (fw *FileWatcher) AddRecursive(root string) error {
	_, err := fw.walk(root)
	return err
}

// walk registers the directories under root and returns the regular files it
// passed on the way.
func (fw *FileWatcher) walk(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			fw.logger.Warn("Failed to read %s: %v", path, err)
			return nil
		}

		if !d.IsDir() {
			if filter.RegularFile(path, d) {
				files = append(files, path)
			}
			return nil
		}

		if path != root && fw.skipDir(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("failed to watch directory %s: %w", path, err)
			}
			fw.logger.Error("Failed to watch directory: %s, error: %v", path, err)
			return nil
		}
		fw.logger.Debug("Watching directory: %s", path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	return files, nil
}

// Changes yields every path reported as created or written, until ctx is
// cancelled or the watcher is closed. A newly created directory is registered
// on the spot and the files already inside it are yielded, since they may have
// landed before the directory was being watched.
func (fw *FileWatcher) Changes(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}

				fw.logger.Debug("Received file event: %s %s", event.Op, event.Name)
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}

				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if fw.skipDir(event.Name) {
							continue
						}
						files, err := fw.walk(event.Name)
						if err != nil {
							fw.logger.Error("Failed to watch new directory %s: %v", event.Name, err)
							continue
						}
						for _, file := range files {
							if !yield(file) {
								return
							}
						}
						continue
					}
				}

				if !yield(event.Name) {
					return
				}

			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.logger.Error("File watcher error: %v", err)
			}
		}
	}
}

func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
