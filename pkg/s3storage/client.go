// Package s3storage — тонкий клиент объектного хранилища (CDN origin).
// Что и куда грузить решает uploader.
package s3storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ilkoid/pixelbros-assets/pkg/config"
)

// ErrAlreadyExists — объект уже лежит в хранилище, а Overwrite выключен.
var ErrAlreadyExists = errors.New("object already exists")

// ErrNotFound — объекта нет.
var ErrNotFound = errors.New("object not found")

// ClientInterface определяет интерфейс для S3 клиента.
// Используется для мокания в тестах и внедрения зависимостей.
type ClientInterface interface {
	Upload(ctx context.Context, localPath, key string, opts UploadOptions) (string, error)
	UploadBytes(ctx context.Context, data []byte, key string, opts UploadOptions) (string, error)
	Stat(ctx context.Context, key string) (StoredObject, error)
	ListFiles(ctx context.Context, prefix string) ([]StoredObject, error)
	URL(key string) string
}

type Client struct {
	api     *minio.Client
	bucket  string
	baseURL string
}

// Проверка что Client реализует ClientInterface
var _ ClientInterface = (*Client)(nil)

// StoredObject - сырой объект из S3
type StoredObject struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// UploadOptions — параметры одной загрузки.
type UploadOptions struct {
	ContentType string
	Overwrite   bool
	PartSize    uint64 // 0 — выбирает minio
}

// New создает клиент, используя наш конфиг
func New(cfg config.S3Config) (*Client, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		api:     minioClient,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimSuffix(cfg.PublicURLBase(), "/"),
	}, nil
}

// ObjectKey строит ключ объекта: "<type>/upload/<publicID><ext>".
func ObjectKey(resourceType, publicID, ext string) string {
	return path.Join(resourceType, "upload", publicID) + strings.ToLower(ext)
}

// URL — публичная ссылка на объект.
func (c *Client) URL(key string) string {
	return c.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// Upload загружает локальный файл и возвращает его публичный URL.
//
// Без opts.Overwrite существующий ключ даёт ErrAlreadyExists.
func (c *Client) Upload(ctx context.Context, localPath, key string, opts UploadOptions) (string, error) {
	if err := c.checkOverwrite(ctx, key, opts); err != nil {
		return "", err
	}

	_, err := c.api.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: opts.ContentType,
		PartSize:    opts.PartSize,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	return c.URL(key), nil
}

// UploadBytes — то же для данных в памяти (например после ресайза).
func (c *Client) UploadBytes(ctx context.Context, data []byte, key string, opts UploadOptions) (string, error) {
	if err := c.checkOverwrite(ctx, key, opts); err != nil {
		return "", err
	}

	_, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: opts.ContentType,
		PartSize:    opts.PartSize,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return c.URL(key), nil
}

func (c *Client) checkOverwrite(ctx context.Context, key string, opts UploadOptions) error {
	if opts.Overwrite {
		return nil
	}
	_, err := c.Stat(ctx, key)
	switch {
	case err == nil:
		return fmt.Errorf("%s: %w", key, ErrAlreadyExists)
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}

// Stat возвращает метаданные объекта или ErrNotFound.
func (c *Client) Stat(ctx context.Context, key string) (StoredObject, error) {
	info, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return StoredObject{}, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return StoredObject{}, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	return StoredObject{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ContentType:  info.ContentType,
	}, nil
}

// ListFiles возвращает ВСЕ файлы по префиксу. Пустой результат не ошибка.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]StoredObject, error) {
	// Нормализация префикса (добавляем слеш, если это "папка")
	if !strings.HasSuffix(prefix, "/") && prefix != "" {
		prefix += "/"
	}

	var objects []StoredObject

	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	for obj := range c.api.ListObjects(ctx, c.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		// Пропускаем саму "папку"
		if obj.Key == prefix {
			continue
		}
		objects = append(objects, StoredObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ContentType:  obj.ContentType,
		})
	}

	return objects, nil
}
