// Package slug нормализует имена файлов и папок в стабильные идентификаторы.
//
// Две формы:
//   - Normalize: CDN-safe сегмент (буквы, цифры, "._-"), регистр сохраняется
//   - Slugify: URL slug в нижнем регистре через дефис (для portfolio индекса)
//
// Оба варианта убирают диакритику: "Diseño" → "Diseno".
package slug

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unsafeChars   = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	underscoreRun = regexp.MustCompile(`_+`)
	nonSlugRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// combiningMarks — блок Combining Diacritical Marks (U+0300–U+036F).
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// StripAccents раскладывает строку в NFD и выбрасывает комбинируемые диакритики.
//
// Результат не рекомпозируется обратно в NFC.
func StripAccents(raw string) string {
	// transform.Chain хранит буферы, поэтому создаём на каждый вызов
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	out, _, err := transform.String(t, raw)
	if err != nil {
		return raw
	}
	return out
}

// Normalize превращает сегмент пути в CDN-safe идентификатор.
//
// Пустой или полностью "символьный" вход даёт пустую строку.
func Normalize(raw string) string {
	s := StripAccents(raw)
	s = unsafeChars.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// Slugify строит slug: без диакритики, lower case, не-алфанумерика → "-".
func Slugify(raw string) string {
	s := strings.ToLower(StripAccents(raw))
	s = nonSlugRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// PublicID строит идентификатор назначения в CDN из относительного пути.
//
// Расширение отбрасывается, каждый сегмент проходит через Normalize:
//
//	PublicID("pixelbros", "Portfolio/Diseño de Identidad Visual/Dulce Cuidado/1.jpg")
//	// "pixelbros/Portfolio/Diseno_de_Identidad_Visual/Dulce_Cuidado/1"
func PublicID(prefix, relPath string) string {
	rel := strings.Trim(strings.ReplaceAll(relPath, `\`, "/"), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = Normalize(seg)
	}

	id := strings.Join(segments, "/")
	if prefix == "" {
		return id
	}
	return strings.TrimSuffix(prefix, "/") + "/" + id
}

// ManifestKey возвращает ключ манифеста для файла внутри root.
//
// Ключ всегда начинается с "/" и использует прямые слэши:
// "<root>/Portfolio/Branding/Acme/1.jpg" → "/Portfolio/Branding/Acme/1.jpg".
func ManifestKey(root, absPath string) (string, error) {
	rel, err := filepath.Rel(root, absPath)
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", absPath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %s is outside of %s", absPath, root)
	}
	return "/" + rel, nil
}
