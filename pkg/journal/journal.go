// Package journal пишет историю попыток загрузки в sqlite.
//
// Журнал опционален: методы nil *Journal ничего не делают, так что
// uploader не проверяет включён ли он.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Регистрируем драйвер sqlite3
)

// Status — исход одной попытки.
type Status string

const (
	StatusUploaded Status = "uploaded"
	StatusExisting Status = "existing" // объект уже был в хранилище
	StatusFailed   Status = "failed"
)

// Entry — одна попытка загрузки файла.
type Entry struct {
	ID        int64
	RunID     string
	Key       string
	ObjectKey string
	URL       string
	Status    Status
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS uploads (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	asset_key   TEXT NOT NULL,
	object_key  TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS uploads_status ON uploads(status, created_at);
`

// Journal — хранилище записей. Безопасен для конкурентного использования.
type Journal struct {
	db    *sql.DB
	runID string
}

// Open открывает (или создаёт) базу по пути. Пустой путь — журнал выключен (nil, nil).
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, nil
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// sqlite не любит параллельных писателей
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal schema: %w", err)
	}

	return &Journal{db: db, runID: uuid.NewString()}, nil
}

// RunID — идентификатор текущего запуска.
func (j *Journal) RunID() string {
	if j == nil {
		return ""
	}
	return j.runID
}

// Record сохраняет попытку. RunID и CreatedAt заполняются если пусты.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}
	if e.RunID == "" {
		e.RunID = j.runID
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO uploads (run_id, asset_key, object_key, url, status, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Key, e.ObjectKey, e.URL, string(e.Status), e.Error,
		e.Duration.Milliseconds(), e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Key, err)
	}
	return nil
}

// RecentFailures — последние неудачные попытки, новые первыми.
//
// Файл, который потом загрузился успешно, в выборку не попадает.
func (j *Journal) RecentFailures(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT f.id, f.run_id, f.asset_key, f.object_key, f.url, f.status, f.error, f.duration_ms, f.created_at
		FROM uploads f
		WHERE f.status = ?
		  AND NOT EXISTS (
			SELECT 1 FROM uploads ok
			WHERE ok.asset_key = f.asset_key AND ok.status != ? AND ok.id > f.id
		  )
		ORDER BY f.id DESC
		LIMIT ?`,
		string(StatusFailed), string(StatusFailed), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			status     string
			durationMs int64
			createdAt  int64
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.Key, &e.ObjectKey, &e.URL, &status, &e.Error, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan failure row: %w", err)
		}
		e.Status = Status(status)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts — количество записей по статусам для запуска (пустой runID — все запуски).
func (j *Journal) Counts(ctx context.Context, runID string) (map[Status]int, error) {
	counts := make(map[Status]int)
	if j == nil {
		return counts, nil
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM uploads WHERE (? = '' OR run_id = ?) GROUP BY status`,
		runID, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan counts row: %w", err)
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

// Close закрывает базу.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
