// Package utils предоставляет простой файловый логгер для CLI и сервера.
//
// Лог пишется в файл <dir>/<prefix>-YYYY-MM-DD-HH-MM.log, консоль остаётся
// для прогресса загрузки. До InitLogger все вызовы ничего не делают.
// Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level — уровень записи.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

var (
	logMutex sync.Mutex
	logFile  *os.File
	logPath  string
	minLevel = LevelInfo
)

// InitLogger открывает лог-файл в dir (пусто — текущая директория).
//
// Повторный вызов до Close ничего не делает.
func InitLogger(dir, prefix string) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		return nil
	}
	if prefix == "" {
		prefix = "assets"
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
	}

	name := filepath.Join(dir, fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("2006-01-02-15-04")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile, logPath = f, name

	// мьютекс уже захвачен, пишем напрямую
	write(formatLine(LevelInfo, "Logger initialized", "file", name))
	return nil
}

// LogPath — путь открытого лог-файла, "" если логгер не запущен.
func LogPath() string {
	logMutex.Lock()
	defer logMutex.Unlock()
	return logPath
}

// SetDebug включает DEBUG записи (app.debug в конфиге, --debug).
func SetDebug(on bool) {
	if on {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelInfo)
}

// SetLevel задаёт минимальный уровень записи.
func SetLevel(l Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	minLevel = l
}

func Debug(msg string, keyvals ...any) { log(LevelDebug, msg, keyvals...) }
func Info(msg string, keyvals ...any)  { log(LevelInfo, msg, keyvals...) }
func Warn(msg string, keyvals ...any)  { log(LevelWarn, msg, keyvals...) }
func Error(msg string, keyvals ...any) { log(LevelError, msg, keyvals...) }

func log(level Level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil || level < minLevel {
		return
	}
	write(formatLine(level, msg, keyvals...))
}

// formatLine: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2="value 2"
//
// Значения с пробелами (ключи манифеста) берутся в кавычки. Ключ без
// значения пишется как key=(MISSING).
func formatLine(level Level, msg string, keyvals ...any) string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("] ")
	b.WriteString(level.String())
	b.WriteString(": ")
	b.WriteString(msg)

	for i := 0; i < len(keyvals); i += 2 {
		b.WriteString(" ")
		b.WriteString(fmt.Sprint(keyvals[i]))
		b.WriteString("=")
		if i+1 >= len(keyvals) {
			b.WriteString("(MISSING)")
			break
		}
		b.WriteString(formatValue(keyvals[i+1]))
	}
	b.WriteString("\n")
	return b.String()
}

func formatValue(v any) string {
	var s string
	switch val := v.(type) {
	case error:
		s = val.Error()
	case string:
		s = val
	default:
		s = fmt.Sprint(val)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// write пишет строку в файл. Вызывается под logMutex.
// При ошибке записи строка уходит в stderr.
func write(line string) {
	if _, err := logFile.WriteString(line); err != nil {
		fmt.Fprint(os.Stderr, line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}
	if err := logFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
	}
}

// Close закрывает лог-файл. После Close можно снова вызвать InitLogger.
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil {
		return
	}
	if err := logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
	}
	logFile, logPath = nil, ""
}
