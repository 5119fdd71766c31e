package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/tally/pkg/ports"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// File is the on-disk theme definition.
//
//	default: dark
//	themes:
//	  dark:
//	    --text-color: "#f3f4f6"
type File struct {
	Default string          `yaml:"default"`
	Themes  map[string]Vars `yaml:"themes"`
}

// LoadFile reads a YAML theme file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}
	if len(f.Themes) == 0 {
		return nil, fmt.Errorf("theme file %s defines no themes", path)
	}
	if f.Default == "" {
		for name := range f.Themes {
			if f.Default == "" || name < f.Default {
				f.Default = name
			}
		}
	}
	return &f, nil
}

// FileWatcher reloads a theme file into a Root whenever it changes on disk.
type FileWatcher struct {
	Path   string
	Root   *Root
	Logger *slog.Logger
}

var _ ports.TriggerSource = (*FileWatcher)(nil)

// Run watches the file as a trigger source. Reloads reach pub through the
// root observers, not directly.
func (w *FileWatcher) Run(ctx context.Context, _ ports.Publisher) error {
	return w.Watch(ctx)
}

// Watch blocks until ctx is done. The parent directory is watched so
// editors that replace the file by rename are picked up.
func (w *FileWatcher) Watch(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create theme watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("invalid theme path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch theme dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != abs || !(evt.Has(fsnotify.Write) || evt.Has(fsnotify.Create)) {
				continue
			}
			f, err := LoadFile(abs)
			if err != nil {
				logger.Warn("theme: reload failed, keeping previous themes", "path", abs, "err", err)
				continue
			}
			logger.Info("theme: file reloaded", "path", abs, "themes", len(f.Themes))
			w.Root.ReplaceThemes(f.Themes)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("theme: watcher error", "err", err)
		}
	}
}
