package uploader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ilkoid/pixelbros-assets/pkg/classifier"
	"github.com/ilkoid/pixelbros-assets/pkg/journal"
	"github.com/ilkoid/pixelbros-assets/pkg/media"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
	"github.com/ilkoid/pixelbros-assets/pkg/scanner"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// Run загружает assets батчами по opts.Concurrency.
//
// Следующий батч стартует только когда весь текущий завершён. Ошибка одного
// файла не прерывает батч. После каждой удачной загрузки манифест
// сохраняется на диск.
//
// Отмена ctx останавливает планирование новых батчей: текущий доходит до конца,
// манифест сохраняется, возвращается ctx.Err().
func (u *Uploader) Run(ctx context.Context, assets []scanner.Asset) (Stats, error) {
	u.reset()
	total := len(assets)
	u.printf("Found %d assets to process.\n\n", total)

	for start := 0; start < total; start += u.opts.Concurrency {
		if err := ctx.Err(); err != nil {
			utils.Warn("Upload interrupted", "done", start, "total", total)
			return u.finish(err)
		}

		end := min(start+u.opts.Concurrency, total)
		// текущий батч не отменяем: иначе потеряем уже начатые загрузки
		batchCtx := context.WithoutCancel(ctx)

		var g errgroup.Group
		for i := start; i < end; i++ {
			asset := assets[i]
			pos := i + 1
			g.Go(func() error {
				return u.uploadOne(batchCtx, pos, total, asset)
			})
		}
		if err := g.Wait(); err != nil {
			return u.finish(err)
		}
	}

	return u.finish(nil)
}

// uploadOne возвращает ошибку только если не удалось сохранить манифест.
func (u *Uploader) uploadOne(ctx context.Context, pos, total int, asset scanner.Asset) error {
	name := path.Base(asset.RelPath)

	if u.manifest.Has(asset.Key) {
		u.count(func(s *Stats) { s.Skipped++ })
		u.printf("[%d/%d] Skipped: %s\n", pos, total, name)
		return nil
	}

	objectKey := s3storage.ObjectKey(asset.ResourceType, asset.PublicID, path.Ext(asset.RelPath))
	opts := s3storage.UploadOptions{ContentType: media.ContentType(asset.RelPath)}
	if u.opts.LargeFile > 0 && asset.Size > u.opts.LargeFile {
		opts.PartSize = u.opts.PartSize
	}

	started := time.Now()
	url, err := u.put(ctx, asset, objectKey, opts)
	entry := journal.Entry{Key: asset.Key, ObjectKey: objectKey, Duration: time.Since(started)}

	switch {
	case err == nil:
		u.manifest.Set(asset.Key, url)
		u.count(func(s *Stats) { s.Uploaded++ })
		u.printf("[%d/%d] ✓ %s\n", pos, total, name)
		utils.Info("Uploaded", "key", asset.Key, "url", url)
		entry.Status, entry.URL = journal.StatusUploaded, url

	case errors.Is(err, s3storage.ErrAlreadyExists):
		url = u.store.URL(objectKey)
		u.manifest.Set(asset.Key, url)
		u.count(func(s *Stats) { s.Skipped++; s.Existing++ })
		u.printf("[%d/%d] ~ Exists: %s\n", pos, total, name)
		utils.Info("Already in storage", "key", asset.Key, "url", url)
		entry.Status, entry.URL = journal.StatusExisting, url

	default:
		u.count(func(s *Stats) { s.Failed++ })
		u.printf("[%d/%d] ✗ Upload failed: %s %v\n", pos, total, asset.Key, err)
		utils.Error("Upload failed", "key", asset.Key, "error", err)
		entry.Status, entry.Error = journal.StatusFailed, err.Error()
		u.record(ctx, entry)
		return nil
	}

	u.record(ctx, entry)
	if err := u.manifest.SaveIfDirty(); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// put выполняет загрузку с rate limit и таймаутом на файл.
//
// JPEG шире opts.MaxWidth уменьшается перед загрузкой.
func (u *Uploader) put(ctx context.Context, asset scanner.Asset, objectKey string, opts s3storage.UploadOptions) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()

	if err := u.wait(ctx); err != nil {
		return "", err
	}

	if u.shouldResize(asset) {
		data, err := os.ReadFile(asset.AbsPath)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", asset.AbsPath, err)
		}
		out, resized, err := utils.ResizeImage(data, u.opts.MaxWidth, u.opts.Quality)
		if err != nil {
			return "", err
		}
		if resized {
			utils.Debug("Resized before upload", "key", asset.Key, "from", len(data), "to", len(out))
			return u.store.UploadBytes(ctx, out, objectKey, opts)
		}
	}

	return u.store.Upload(ctx, asset.AbsPath, objectKey, opts)
}

func (u *Uploader) shouldResize(asset scanner.Asset) bool {
	if u.opts.MaxWidth <= 0 || asset.ResourceType != classifier.ResourceImage {
		return false
	}
	ext := media.Ext(asset.RelPath)
	return ext == ".jpg" || ext == ".jpeg"
}

func (u *Uploader) reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stats = Stats{}
}

// finish делает финальное сохранение манифеста.
func (u *Uploader) finish(runErr error) (Stats, error) {
	if err := u.manifest.SaveIfDirty(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("save manifest: %w", err))
	}
	return u.Stats(), runErr
}
