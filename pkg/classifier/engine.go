// Package classifier определяет resource type файла для загрузки в CDN.
//
// Правила берутся из config.file_rules: первый совпавший паттерн задаёт тег.
// Это отдельная ось от media.Type: .svg в индексе — image, а в CDN уходит
// как raw (без транскодинга).
package classifier

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ilkoid/pixelbros-assets/pkg/config"
)

// Resource types хранилища.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

// Engine выполняет классификацию
type Engine struct {
	rules []config.FileRule
}

// New создаёт движок. Пустые правила заменяются дефолтными.
func New(rules []config.FileRule) *Engine {
	if len(rules) == 0 {
		rules = config.DefaultFileRules()
	}
	return &Engine{rules: rules}
}

// Classify возвращает тег для файла. relPath — путь с прямыми слэшами.
//
// Паттерн без "/" сравнивается только с именем файла, паттерн со "/" —
// с полным путём (doublestar, поддерживает "**"). Без совпадений — raw.
func (e *Engine) Classify(relPath string) string {
	relPath = strings.TrimPrefix(strings.ReplaceAll(relPath, `\`, "/"), "/")
	filename := path.Base(relPath)

	for _, rule := range e.rules {
		for _, pattern := range rule.Patterns {
			// Case-insensitive сравнение для расширений
			subject := filename
			if strings.Contains(pattern, "/") {
				subject = relPath
			}
			isMatch, _ := doublestar.Match(strings.ToLower(pattern), strings.ToLower(subject))
			if isMatch {
				return rule.Tag
			}
		}
	}
	return ResourceRaw
}

// Process раскладывает список путей по тегам.
func (e *Engine) Process(paths []string) map[string][]string {
	result := make(map[string][]string)
	for _, p := range paths {
		tag := e.Classify(p)
		result[tag] = append(result[tag], p)
	}
	return result
}
