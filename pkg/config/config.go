package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	S3              S3Config        `yaml:"s3"`
	Assets          AssetsConfig    `yaml:"assets"`
	Upload          UploadConfig    `yaml:"upload"`
	ImageProcessing ImageProcConfig `yaml:"image_processing"`
	FileRules       []FileRule      `yaml:"file_rules"`  // resource type по glob паттернам
	ExtraFiles      []ExtraFile     `yaml:"extra_files"` // логотипы и прочее вне assets
	Server          ServerConfig    `yaml:"server"`
	Journal         JournalConfig   `yaml:"journal"`
	App             AppSpecific     `yaml:"app"`
}

// S3Config — настройки объектного хранилища (CDN origin).
type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey     string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL        bool   `yaml:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url"` // "https://cdn.pixelbros.example"; пусто — URL бакета
}

// PublicURLBase возвращает базу публичных ссылок на объекты.
func (c S3Config) PublicURLBase() string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
}

// AssetsConfig — где лежат исходники и куда писать манифест.
type AssetsConfig struct {
	Root           string   `yaml:"root"`             // src/assets
	Folders        []string `yaml:"folders"`          // подпапки root для загрузки
	Extensions     []string `yaml:"extensions"`       // allow-list, пусто — дефолтный
	Ignore         []string `yaml:"ignore"`           // doublestar паттерны относительно root
	PublicIDPrefix string   `yaml:"public_id_prefix"` // pixelbros
	ManifestPath   string   `yaml:"manifest_path"`
	LocalBaseURL   string   `yaml:"local_base_url"` // для локальной стороны merge
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *AssetsConfig) GetDefaults() AssetsConfig {
	result := *c

	if result.Root == "" {
		result.Root = filepath.Join("src", "assets")
	}
	if len(result.Folders) == 0 {
		result.Folders = []string{"Portfolio", "Inicio"}
	}
	if len(result.Ignore) == 0 {
		result.Ignore = []string{"**/.*", "**/.*/**"}
	}
	if result.PublicIDPrefix == "" {
		result.PublicIDPrefix = "pixelbros"
	}
	if result.ManifestPath == "" {
		result.ManifestPath = filepath.Join("src", "config", "cloudinaryManifest.json")
	}

	return result
}

// UploadConfig — параметры загрузчика.
type UploadConfig struct {
	Concurrency int    `yaml:"concurrency"`   // размер батча
	RateLimit   int    `yaml:"rate_limit"`    // запросов в минуту, 0 — без лимита
	BurstLimit  int    `yaml:"burst_limit"`   // burst для rate limiter
	PartSizeMB  int    `yaml:"part_size_mb"`  // размер части multipart в retry режиме
	LargeFileMB int    `yaml:"large_file_mb"` // выше — сразу multipart с PartSizeMB
	Timeout     string `yaml:"timeout"`       // на один файл, например "10m"
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *UploadConfig) GetDefaults() UploadConfig {
	result := *c

	if result.Concurrency <= 0 {
		result.Concurrency = 5
	}
	if result.BurstLimit <= 0 {
		result.BurstLimit = result.Concurrency
	}
	if result.PartSizeMB <= 0 {
		result.PartSizeMB = 20
	}
	if result.LargeFileMB <= 0 {
		result.LargeFileMB = 100
	}
	if result.Timeout == "" {
		result.Timeout = "10m"
	}

	return result
}

// FileTimeout — таймаут на один файл.
func (c UploadConfig) FileTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid upload.timeout format: %w", err)
	}
	return d, nil
}

// FileRule — glob паттерны имени файла для resource type.
type FileRule struct {
	Tag      string   `yaml:"tag"`      // "image", "video", "raw"
	Patterns []string `yaml:"patterns"` // Glob паттерны: "*.jpg", "*.mp4"
}

// DefaultFileRules повторяют классификацию старого загрузчика.
func DefaultFileRules() []FileRule {
	return []FileRule{
		{Tag: "video", Patterns: []string{"*.mp4", "*.webm", "*.mov"}},
		{Tag: "raw", Patterns: []string{"*.svg"}},
		{Tag: "image", Patterns: []string{"*.jpg", "*.jpeg", "*.png", "*.gif"}},
	}
}

// ExtraFile — файл вне assets с явным public id (логотипы, favicon).
type ExtraFile struct {
	Path string `yaml:"path"`
	ID   string `yaml:"id"`
}

// ImageProcConfig — уменьшение больших картинок перед загрузкой.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"` // 0 — не трогать
	Quality  int `yaml:"quality"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ImageProcConfig) GetDefaults() ImageProcConfig {
	result := *c
	if result.Quality <= 0 || result.Quality > 100 {
		result.Quality = 85
	}
	return result
}

// ServerConfig — HTTP API портфолио.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// JournalConfig — sqlite журнал загрузок.
type JournalConfig struct {
	Path string `yaml:"path"` // пусто — журнал выключен
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug     bool   `yaml:"debug"`
	LogDir    string `yaml:"log_dir"` // пусто — текущая директория
	LogPrefix string `yaml:"log_prefix"`
}

// Load читает YAML, подставляет ENV и проверяет настройки хранилища.
func Load(path string) (*AppConfig, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadLocal — как Load, но без требований к S3.
//
// Для команд, которые работают только с манифестом и индексом.
func LoadLocal(path string) (*AppConfig, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAssets(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func read(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. .env рядом с конфигом (ключи S3 не храним в YAML)
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	// 3. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 4. Подставляем переменные окружения ${VAR}
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 5. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	c.Assets = c.Assets.GetDefaults()
	c.Upload = c.Upload.GetDefaults()
	c.ImageProcessing = c.ImageProcessing.GetDefaults()
	if len(c.FileRules) == 0 {
		c.FileRules = DefaultFileRules()
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.App.LogPrefix == "" {
		c.App.LogPrefix = "assets"
	}
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	if c.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}
	if c.S3.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required")
	}
	if _, err := c.Upload.FileTimeout(); err != nil {
		return err
	}
	return c.validateAssets()
}

func (c *AppConfig) validateAssets() error {
	if c.Assets.Root == "" {
		return fmt.Errorf("assets.root is required")
	}
	for _, rule := range c.FileRules {
		if rule.Tag == "" {
			return fmt.Errorf("file_rules: tag is required")
		}
	}
	for _, f := range c.ExtraFiles {
		if f.Path == "" || f.ID == "" {
			return fmt.Errorf("extra_files: path and id are required")
		}
	}
	return nil
}
