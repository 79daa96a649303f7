package portfolio

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ilkoid/pixelbros-assets/pkg/media"
)

// AllCategories — фильтр "Todos" на странице портфолио.
const AllCategories = "all"

var videoExt = regexp.MustCompile(`(?i)\.(mp4|webm)$`)

// Lookup ищет проект по slug. Неизвестный slug даёт первый проект
// индекса и found=false (так ведёт себя страница детали).
func (idx *Index) Lookup(slugValue string) (*Project, bool) {
	if p, ok := idx.BySlug[slugValue]; ok {
		return p, true
	}
	if len(idx.Projects) == 0 {
		return nil, false
	}
	return idx.Projects[0], false
}

// ProjectsIn возвращает проекты категории. "" и "all" — все проекты.
func (idx *Index) ProjectsIn(categoryID string) []*Project {
	if categoryID == "" || categoryID == AllCategories {
		return idx.Projects
	}
	var out []*Project
	for _, p := range idx.Projects {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// Featured — первые n проектов (превью на главной).
func (idx *Index) Featured(n int) []*Project {
	if n <= 0 || n >= len(idx.Projects) {
		return idx.Projects
	}
	return idx.Projects[:n]
}

// Covers возвращает по одной картинке на проект. limit <= 0 — все.
func (idx *Index) Covers(limit int) []string {
	if limit <= 0 || limit >= len(idx.covers) {
		return append([]string{}, idx.covers...)
	}
	return append([]string{}, idx.covers[:limit]...)
}

// CoverStrip повторяет обложки пока их не станет хотя бы minItems,
// затем обрезает до maxItems. Нужен для бесшовной ленты на главной.
func (idx *Index) CoverStrip(minItems, maxItems int) []string {
	if len(idx.covers) == 0 {
		return []string{}
	}
	strip := append([]string{}, idx.covers...)
	for len(strip) < minItems {
		strip = append(strip, idx.covers...)
	}
	if maxItems > 0 && len(strip) > maxItems {
		strip = strip[:maxItems]
	}
	return strip
}

// PosterURL выводит JPEG-постер первого кадра для видео на CDN.
// Для не-видео возвращает пустую строку.
func PosterURL(src string) string {
	if src == "" || !media.IsVideoURL(src) {
		return ""
	}
	poster := strings.Replace(src, "/video/upload/", "/video/upload/so_0,q_auto,f_jpg/", 1)
	return videoExt.ReplaceAllString(poster, ".jpg")
}

// Records разворачивает манифест в отсортированный по пути список AssetRecord.
func Records(assets map[string]string) []AssetRecord {
	records := make([]AssetRecord, 0, len(assets))
	for k, v := range assets {
		rawPath := strings.ReplaceAll(k, `\`, "/")
		records = append(records, AssetRecord{
			RawPath:   rawPath,
			URL:       v,
			MediaType: media.TypeOf(rawPath),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RawPath < records[j].RawPath
	})
	return records
}
