// Package api отдаёт индекс портфолио по HTTP.
//
// Индекс строится из манифеста при старте и перестраивается при каждом
// изменении файла манифеста. Читатели получают неизменяемый снимок через
// atomic.Pointer, перестройка их не блокирует.
package api

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/portfolio"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// Service хранит текущий индекс.
type Service struct {
	manifestPath string
	index        atomic.Pointer[portfolio.Index]
	loadedAt     atomic.Int64 // unix millis
	metrics      *Metrics
}

// NewService загружает манифест и строит первый индекс.
// metrics может быть nil.
func NewService(manifestPath string, metrics *Metrics) (*Service, error) {
	s := &Service{manifestPath: manifestPath, metrics: metrics}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticService оборачивает готовый манифест без файла (тесты, `assets index`).
func NewStaticService(m manifest.Manifest, metrics *Metrics) *Service {
	s := &Service{metrics: metrics}
	s.swap(portfolio.Build(m))
	return s
}

// Index — текущий снимок.
func (s *Service) Index() *portfolio.Index {
	return s.index.Load()
}

// LoadedAt — время последней успешной перестройки.
func (s *Service) LoadedAt() time.Time {
	return time.UnixMilli(s.loadedAt.Load())
}

// ManifestPath — путь файла манифеста ("" для статического сервиса).
func (s *Service) ManifestPath() string {
	return s.manifestPath
}

// Reload перечитывает манифест и подменяет индекс.
//
// При ошибке чтения старый индекс остаётся.
func (s *Service) Reload() error {
	m, err := manifest.Load(s.manifestPath)
	if err != nil {
		s.metrics.reloaded(false)
		return fmt.Errorf("reload manifest: %w", err)
	}

	idx := portfolio.Build(m)
	for _, c := range idx.Collisions {
		utils.Warn("Slug collision, entries merged",
			"kind", c.Kind, "slug", c.Slug, "kept", c.Kept, "merged", c.Merged)
	}
	s.swap(idx)
	s.metrics.reloaded(true)

	utils.Info("Portfolio index built",
		"manifest", s.manifestPath,
		"categories", len(idx.Categories),
		"projects", len(idx.Projects),
		"skipped", idx.Skipped)
	return nil
}

func (s *Service) swap(idx *portfolio.Index) {
	s.index.Store(idx)
	s.loadedAt.Store(time.Now().UnixMilli())
	s.metrics.indexSize(idx)
}
