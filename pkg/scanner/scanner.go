// Package scanner находит локальные медиа-файлы для загрузки в CDN.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ilkoid/pixelbros-assets/pkg/classifier"
	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/media"
	"github.com/ilkoid/pixelbros-assets/pkg/slug"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// Asset — один найденный файл.
type Asset struct {
	AbsPath      string
	RelPath      string // относительно root, прямые слэши
	Key          string // ключ манифеста: "/Portfolio/..."
	PublicID     string
	Size         int64
	MediaType    media.Type
	ResourceType string // image / video / raw
}

// Result — итог сканирования.
type Result struct {
	Assets       []Asset
	SkippedCount int // файлы вне allow-list
	IgnoredCount int // файлы и папки под ignore паттернами
}

// Options описывает что и где искать.
type Options struct {
	Root           string
	Folders        []string
	Extensions     map[string]bool
	Ignore         []string
	PublicIDPrefix string
	Classifier     *classifier.Engine
}

// FromConfig собирает Options из конфига.
func FromConfig(assets config.AssetsConfig, rules []config.FileRule) Options {
	return Options{
		Root:           assets.Root,
		Folders:        assets.Folders,
		Extensions:     media.ExtensionSet(assets.Extensions),
		Ignore:         assets.Ignore,
		PublicIDPrefix: assets.PublicIDPrefix,
		Classifier:     classifier.New(rules),
	}
}

// Scan рекурсивно обходит папки opts.Folders внутри opts.Root.
//
// Отсутствующая папка не ошибка: пишем предупреждение и идём дальше.
// Результат отсортирован по Key.
func Scan(ctx context.Context, opts Options) (*Result, error) {
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("cannot access assets root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", opts.Root)
	}

	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	if opts.Extensions == nil {
		opts.Extensions = media.ExtensionSet(nil)
	}
	if opts.Classifier == nil {
		opts.Classifier = classifier.New(nil)
	}

	result := &Result{}
	for _, folder := range opts.Folders {
		dir := filepath.Join(opts.Root, folder)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			utils.Warn("Assets folder not found, skipping", "dir", dir)
			continue
		}
		if err := walk(ctx, opts, dir, result); err != nil {
			return nil, err
		}
	}

	sort.Slice(result.Assets, func(i, j int) bool {
		return result.Assets[i].Key < result.Assets[j].Key
	})
	return result, nil
}

func walk(ctx context.Context, opts Options, dir string, result *Result) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		// сама папка (в том числе "." = root) ключа не имеет
		if p == dir && d.IsDir() {
			return nil
		}

		key, err := slug.ManifestKey(opts.Root, p)
		if err != nil {
			return err
		}
		rel := key[1:]

		if ignored(opts.Ignore, rel) {
			result.IgnoredCount++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		if !opts.Extensions[media.Ext(d.Name())] {
			result.SkippedCount++
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		result.Assets = append(result.Assets, Asset{
			AbsPath:      p,
			RelPath:      rel,
			Key:          key,
			PublicID:     slug.PublicID(opts.PublicIDPrefix, rel),
			Size:         fi.Size(),
			MediaType:    media.TypeOf(rel),
			ResourceType: opts.Classifier.Classify(rel),
		})
		return nil
	})
}

func ignored(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Keys возвращает ключи манифеста найденных файлов.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.Assets))
	for i, a := range r.Assets {
		keys[i] = a.Key
	}
	return keys
}

// TotalSize — суммарный размер в байтах.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, a := range r.Assets {
		total += a.Size
	}
	return total
}
