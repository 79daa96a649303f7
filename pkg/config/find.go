package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName — имя конфига по умолчанию.
const DefaultFileName = "config.yaml"

// FindConfigPath находит путь к config.yaml.
//
// Порядок поиска:
// 1. Флаг --config (если указан)
// 2. Текущая директория (./config.yaml)
// 3. Директория бинарника
// 4. Родительские директории (для запуска из cmd/<tool>/)
//
// Если ничего не найдено — возвращает ./config.yaml, и Load упадёт с понятной ошибкой.
func FindConfigPath(flagValue string) string {
	if flagValue != "" {
		return resolveAbsPath(flagValue)
	}

	if _, err := os.Stat(DefaultFileName); err == nil {
		return resolveAbsPath(DefaultFileName)
	}

	if execPath, err := os.Executable(); err == nil {
		cfgPath := filepath.Join(filepath.Dir(execPath), DefaultFileName)
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath
		}
	}

	for _, cfgPath := range []string{
		filepath.Join("..", DefaultFileName),
		filepath.Join("..", "..", DefaultFileName),
	} {
		if _, err := os.Stat(cfgPath); err == nil {
			return resolveAbsPath(cfgPath)
		}
	}

	return DefaultFileName
}

func resolveAbsPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
