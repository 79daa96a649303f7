package api

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// DefaultDebounce — пауза после последнего события перед перестройкой.
const DefaultDebounce = 300 * time.Millisecond

// Watch следит за файлом манифеста и вызывает Reload после изменений.
//
// Наблюдаем за папкой, а не за файлом: manifest.Save пишет временный файл
// и делает rename, после которого watch на старом inode бесполезен.
// Блокирует до отмены ctx.
func (s *Service) Watch(ctx context.Context, debounce time.Duration) error {
	if s.manifestPath == "" {
		return fmt.Errorf("watch: service has no manifest file")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	target, err := filepath.Abs(s.manifestPath)
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	utils.Info("Manifest watcher started", "path", target, "debounce", debounce)

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				utils.Debug("Manifest change detected", "op", event.Op.String())
				timer.Reset(debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			utils.Error("Watcher error", "error", err)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				utils.Error("Index reload failed, keeping previous index", "error", err)
			}
		}
	}
}
