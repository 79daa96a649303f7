// Package uploader загружает локальные медиа в объектное хранилище и
// ведёт манифест ключ → URL.
//
// Три режима:
//   - Run: батчи по Concurrency файлов, пропуск уже загруженных, существующий
//     объект не перезаписывается, а его URL попадает в манифест;
//   - Retry: последовательно, только файлы без записи в манифесте, multipart, overwrite;
//   - Extra: фиксированный список файлов с явным public id, overwrite.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ilkoid/pixelbros-assets/pkg/classifier"
	"github.com/ilkoid/pixelbros-assets/pkg/config"
	"github.com/ilkoid/pixelbros-assets/pkg/journal"
	"github.com/ilkoid/pixelbros-assets/pkg/manifest"
	"github.com/ilkoid/pixelbros-assets/pkg/s3storage"
	"github.com/ilkoid/pixelbros-assets/pkg/utils"
)

// ErrNilStore — не передано хранилище или манифест.
var ErrNilStore = errors.New("uploader: store and manifest are required")

const mb = 1024 * 1024

// Options — параметры загрузчика.
type Options struct {
	Concurrency int
	RateLimit   int // запросов в минуту, 0 — без лимита
	BurstLimit  int
	PartSize    uint64 // для Retry и больших файлов
	LargeFile   int64  // порог "большого" файла в байтах
	Timeout     time.Duration
	MaxWidth    int // ресайз JPEG перед загрузкой, 0 — выключен
	Quality     int
	Out         io.Writer // прогресс в консоль, nil — os.Stdout
}

// OptionsFromConfig собирает Options из конфига.
func OptionsFromConfig(cfg *config.AppConfig) (Options, error) {
	timeout, err := cfg.Upload.FileTimeout()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Concurrency: cfg.Upload.Concurrency,
		RateLimit:   cfg.Upload.RateLimit,
		BurstLimit:  cfg.Upload.BurstLimit,
		PartSize:    uint64(cfg.Upload.PartSizeMB) * mb,
		LargeFile:   int64(cfg.Upload.LargeFileMB) * mb,
		Timeout:     timeout,
		MaxWidth:    cfg.ImageProcessing.MaxWidth,
		Quality:     cfg.ImageProcessing.Quality,
	}, nil
}

// Stats — итог запуска.
type Stats struct {
	Uploaded int
	Skipped  int // уже в манифесте или уже в хранилище
	Existing int // из них найдено в хранилище
	Failed   int
	Missing  int // Extra: файл не найден на диске
}

// Uploader — загрузчик. Один экземпляр на запуск.
type Uploader struct {
	store      s3storage.ClientInterface
	manifest   *manifest.Store
	journal    *journal.Journal
	classifier *classifier.Engine
	limiter    *rate.Limiter
	opts       Options
	out        io.Writer

	mu    sync.Mutex // stats и вывод
	stats Stats
}

// New создаёт загрузчик. journal может быть nil.
func New(store s3storage.ClientInterface, m *manifest.Store, j *journal.Journal, opts Options) (*Uploader, error) {
	if store == nil || m == nil {
		return nil, ErrNilStore
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}

	u := &Uploader{
		store:      store,
		manifest:   m,
		journal:    j,
		classifier: classifier.New(nil),
		opts:       opts,
		out:        opts.Out,
	}
	if u.out == nil {
		u.out = os.Stdout
	}

	// rateLimit в запросах/минуту → rate.Limit в запросах/секунду
	if opts.RateLimit > 0 {
		burst := opts.BurstLimit
		if burst <= 0 {
			burst = opts.Concurrency
		}
		u.limiter = rate.NewLimiter(rate.Limit(float64(opts.RateLimit)/60.0), burst)
	}
	return u, nil
}

// WithClassifier задаёт правила resource type для Extra.
func (u *Uploader) WithClassifier(e *classifier.Engine) *Uploader {
	if e != nil {
		u.classifier = e
	}
	return u
}

// Stats возвращает копию счётчиков.
func (u *Uploader) Stats() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stats
}

func (u *Uploader) printf(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *Uploader) count(fn func(s *Stats)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(&u.stats)
}

func (u *Uploader) wait(ctx context.Context) error {
	if u.limiter == nil {
		return nil
	}
	if err := u.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (u *Uploader) record(ctx context.Context, e journal.Entry) {
	if err := u.journal.Record(ctx, e); err != nil {
		// журнал вспомогательный, загрузку не прерываем
		utils.Warn("Journal record failed", "key", e.Key, "error", err)
	}
}
