package uploader

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/journal"
	"github.com/ilkoid/pixelbros-assets/pkg/media"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
	"github.com/ilkoid/pixelbros-assets/pkg/scanner"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// Pending возвращает assets без записи в манифесте.
func (u *Uploader) Pending(assets []scanner.Asset) []scanner.Asset {
	var pending []scanner.Asset
	for _, a := range assets {
		if !u.manifest.Has(a.Key) {
			pending = append(pending, a)
		}
	}
	return pending
}

// Retry догружает файлы, которых нет в манифесте: по одному, multipart
// частями opts.PartSize, с перезаписью.
func (u *Uploader) Retry(ctx context.Context, assets []scanner.Asset) (Stats, error) {
	u.reset()
	pending := u.Pending(assets)
	total := len(pending)
	u.printf("Found %d files not yet in manifest (retrying with chunked upload).\n\n", total)

	for i, asset := range pending {
		if err := ctx.Err(); err != nil {
			return u.finish(err)
		}

		objectKey := s3storage.ObjectKey(asset.ResourceType, asset.PublicID, path.Ext(asset.RelPath))
		opts := s3storage.UploadOptions{
			ContentType: media.ContentType(asset.RelPath),
			Overwrite:   true,
			PartSize:    u.opts.PartSize,
		}

		u.printf("[%d/%d] Uploading (%.1f MB): %s ... ", i+1, total, float64(asset.Size)/mb, path.Base(asset.RelPath))

		started := time.Now()
		url, err := u.put(ctx, asset, objectKey, opts)
		entry := journal.Entry{Key: asset.Key, ObjectKey: objectKey, Duration: time.Since(started)}
		if err != nil {
			u.count(func(s *Stats) { s.Failed++ })
			u.printf("✗ %v\n", err)
			utils.Error("Retry failed", "key", asset.Key, "error", err)
			entry.Status, entry.Error = journal.StatusFailed, err.Error()
			u.record(ctx, entry)
			continue
		}

		u.manifest.Set(asset.Key, url)
		u.count(func(s *Stats) { s.Uploaded++ })
		u.printf("✓\n")
		utils.Info("Uploaded on retry", "key", asset.Key, "url", url)
		entry.Status, entry.URL = journal.StatusUploaded, url
		u.record(ctx, entry)

		if err := u.manifest.SaveIfDirty(); err != nil {
			return u.Stats(), fmt.Errorf("save manifest: %w", err)
		}
	}

	return u.finish(nil)
}

// ExtraResult — URL загруженного файла из Extra.
type ExtraResult struct {
	Path string
	URL  string
}

// Extra загружает фиксированный список файлов (логотипы) под заданными id.
//
// Манифест не меняется: у этих файлов нет ключа внутри assets root.
// Отсутствующий файл не ошибка, он считается в Missing.
func (u *Uploader) Extra(ctx context.Context, files []config.ExtraFile) ([]ExtraResult, Stats, error) {
	u.reset()
	var results []ExtraResult

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, u.Stats(), err
		}

		fi, err := os.Stat(f.Path)
		if err != nil {
			u.count(func(s *Stats) { s.Missing++ })
			u.printf("Not found: %s\n", f.Path)
			continue
		}

		tag := u.classifier.Classify(f.Path)
		objectKey := s3storage.ObjectKey(tag, f.ID, path.Ext(f.Path))
		asset := scanner.Asset{
			AbsPath:      f.Path,
			RelPath:      f.Path,
			Key:          f.Path,
			PublicID:     f.ID,
			Size:         fi.Size(),
			MediaType:    media.TypeOf(f.Path),
			ResourceType: tag,
		}
		opts := s3storage.UploadOptions{ContentType: media.ContentType(f.Path), Overwrite: true}

		started := time.Now()
		url, err := u.put(ctx, asset, objectKey, opts)
		entry := journal.Entry{Key: f.Path, ObjectKey: objectKey, Duration: time.Since(started)}
		if err != nil {
			u.count(func(s *Stats) { s.Failed++ })
			u.printf("%s FAILED: %v\n", f.Path, err)
			utils.Error("Extra upload failed", "path", f.Path, "error", err)
			entry.Status, entry.Error = journal.StatusFailed, err.Error()
			u.record(ctx, entry)
			continue
		}

		u.count(func(s *Stats) { s.Uploaded++ })
		u.printf("%s -> %s\n", f.Path, url)
		entry.Status, entry.URL = journal.StatusUploaded, url
		u.record(ctx, entry)
		results = append(results, ExtraResult{Path: f.Path, URL: url})
	}

	return results, u.Stats(), nil
}
