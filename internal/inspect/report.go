// Package inspect сверяет манифест с содержимым бакета.
package inspect

import (
	"sort"
	"strings"

	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
)

// Entry — запись манифеста в отчёте.
type Entry struct {
	Key       string
	URL       string
	ObjectKey string // "" для внешних URL
	Size      int64
}

// Report — результат сверки.
type Report struct {
	Present  []Entry  // в манифесте и в бакете
	Missing  []Entry  // в манифесте, но объекта нет
	External []Entry  // URL не из нашего хранилища (старый CDN)
	Orphans  []string // объекты без записи в манифесте
	Bytes    int64    // суммарный размер Present
}

// Compare строит отчёт. baseURL — публичная база хранилища (Client.URL("")).
// Все списки отсортированы по ключу.
func Compare(m manifest.Manifest, objects []s3storage.StoredObject, baseURL string) Report {
	base := strings.TrimSuffix(baseURL, "/") + "/"

	byKey := make(map[string]s3storage.StoredObject, len(objects))
	for _, o := range objects {
		byKey[o.Key] = o
	}

	referenced := make(map[string]bool)
	var r Report

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		url := m[k]
		if !strings.HasPrefix(url, base) {
			r.External = append(r.External, Entry{Key: k, URL: url})
			continue
		}
		objectKey := strings.TrimPrefix(url, base)
		referenced[objectKey] = true

		obj, ok := byKey[objectKey]
		if !ok {
			r.Missing = append(r.Missing, Entry{Key: k, URL: url, ObjectKey: objectKey})
			continue
		}
		r.Present = append(r.Present, Entry{Key: k, URL: url, ObjectKey: objectKey, Size: obj.Size})
		r.Bytes += obj.Size
	}

	for _, o := range objects {
		if !referenced[o.Key] {
			r.Orphans = append(r.Orphans, o.Key)
		}
	}
	sort.Strings(r.Orphans)

	return r
}
