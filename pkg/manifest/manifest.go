// Package manifest хранит плоское отображение ключа ассета в публичный URL.
//
// Формат файла — JSON объект без вложенности и версий:
//
//	{
//	  "/Portfolio/Branding/Acme/1.jpg": "https://cdn.example/pixelbros/Portfolio/Branding/Acme/1.jpg"
//	}
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PortfolioPrefix — ключи, которые потребляет индекс портфолио.
const PortfolioPrefix = "/Portfolio/"

// Manifest — ключ ("/Portfolio/...") → URL.
type Manifest map[string]string

// Load читает манифест с диска. Отсутствующий файл — пустой манифест.
func Load(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	m := Manifest{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// Save пишет манифест атомарно: во временный файл рядом, затем rename.
//
// Ключи сортируются (encoding/json сортирует ключи map), отступ — 2 пробела.
func Save(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create manifest dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// Merge объединяет два источника: записи remote побеждают безусловно,
// local добавляет только отсутствующие ключи. Вход не изменяется.
func Merge(remote, local Manifest) Manifest {
	out := make(Manifest, len(remote)+len(local))
	for k, v := range local {
		out[k] = v
	}
	for k, v := range remote {
		out[k] = v
	}
	return out
}

// Filter возвращает только ключи с заданным префиксом.
func (m Manifest) Filter(prefix string) Manifest {
	out := Manifest{}
	for k, v := range m {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// Portfolio — ключи "/Portfolio/..." в форме, которую ожидает portfolio.Build.
func (m Manifest) Portfolio() map[string]string {
	return m.Filter(PortfolioPrefix)
}

// URL ищет один ассет по ключу. Пустая строка — не найден.
//
//	m.URL("/Portfolio/Diseño de Identidad Visual/Dulce Cuidado/1.jpg")
func (m Manifest) URL(key string) string {
	return m[key]
}

// Store — манифест на диске с потокобезопасным доступом.
//
// Используется загрузчиком: горутины батча пишут результаты параллельно,
// после каждой загрузки файл сохраняется целиком.
type Store struct {
	mu    sync.RWMutex
	path  string
	data  Manifest
	dirty bool
}

// Open загружает манифест по пути (или создаёт пустой).
func Open(path string) (*Store, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, data: m}, nil
}

// Path возвращает путь файла манифеста.
func (s *Store) Path() string {
	return s.path
}

// Has сообщает, есть ли ключ с непустым URL.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key] != ""
}

// Get возвращает URL ключа.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set записывает URL ключа в памяти. На диск — через Save.
func (s *Store) Set(key, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[key] == url {
		return
	}
	s.data[key] = url
	s.dirty = true
}

// Len — число записей.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Snapshot возвращает копию данных.
func (s *Store) Snapshot() Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Manifest, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Save пишет текущее состояние на диск.
//
// Запись под блокировкой: параллельные Save не перемешивают файлы.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := Save(s.path, s.data); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// SaveIfDirty сохраняет только если были изменения после последнего Save.
func (s *Store) SaveIfDirty() error {
	s.mu.RLock()
	dirty := s.dirty
	s.mu.RUnlock()
	if !dirty {
		return nil
	}
	return s.Save()
}

// Local строит локальную сторону слияния: ключ → baseURL + ключ.
//
// Пустой baseURL оставляет сам ключ (путь внутри сборки сайта).
func Local(keys []string, baseURL string) Manifest {
	base := strings.TrimSuffix(baseURL, "/")
	out := make(Manifest, len(keys))
	for _, k := range keys {
		out[k] = base + k
	}
	return out
}
