// Package media определяет какие файлы считаются медиа и какого они типа.
package media

import (
	"path"
	"strings"
)

// Type — тип медиа для индекса портфолио.
type Type string

const (
	Image Type = "image"
	Video Type = "video"
)

// DefaultExtensions — allow-list расширений. Всё остальное не медиа.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".svg", ".mp4", ".webm", ".mov"}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mov":  true,
}

var allowed = toSet(DefaultExtensions)

// Ext возвращает расширение имени файла в нижнем регистре (с точкой).
func Ext(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.ToLower(path.Ext(name))
}

// IsAllowed проверяет, входит ли файл в allow-list.
func IsAllowed(name string) bool {
	return allowed[Ext(name)]
}

// TypeOf: video для .mp4/.webm/.mov, image для всего остального (включая .svg).
func TypeOf(name string) Type {
	if videoExtensions[Ext(name)] {
		return Video
	}
	return Image
}

// IsVideoURL повторяет проверку фронтенда: src заканчивается на .mp4 или .webm.
func IsVideoURL(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".webm")
}

// ExtensionSet нормализует список расширений ("JPG", ".png") в множество.
func ExtensionSet(exts []string) map[string]bool {
	if len(exts) == 0 {
		return toSet(DefaultExtensions)
	}
	return toSet(exts)
}

func toSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// ContentType — MIME тип для загрузки. Неизвестное — application/octet-stream.
func ContentType(name string) string {
	if ct, ok := contentTypes[Ext(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}
