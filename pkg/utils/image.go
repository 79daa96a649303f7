// Package utils предоставляет утилиты для обработки изображений.
package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Регистрируем PNG декодер

	"github.com/nfnt/resize"
)

// ImageWidth читает только заголовок изображения и возвращает ширину.
func ImageWidth(data []byte) (int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, nil
}

// ResizeImage ресайзит изображение до указанной ширины, сохраняя пропорции.
//
// Параметры:
//   - data: байты исходного изображения (JPEG, PNG)
//   - maxWidth: целевая ширина в пикселях. Если 0 или исходное уже не шире — возвращает data как есть.
//   - quality: качество JPEG при кодировании (1-100). Рекомендуется 85.
//
// Второе значение сообщает, был ли ресайз. Результат ресайза всегда JPEG,
// поэтому uploader применяет его только к .jpg/.jpeg.
func ResizeImage(data []byte, maxWidth int, quality int) ([]byte, bool, error) {
	if maxWidth <= 0 {
		return data, false, nil
	}

	// 1. Дешёвая проверка по заголовку
	width, err := ImageWidth(data)
	if err != nil {
		return nil, false, err
	}
	if width <= maxWidth {
		return data, false, nil
	}

	// 2. Декодируем изображение
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decode image: %w", err)
	}

	// 3. Вычисляем новую высоту сохраняя aspect ratio
	bounds := img.Bounds()
	aspectRatio := float64(bounds.Dy()) / float64(bounds.Dx())
	newHeight := uint(float64(maxWidth) * aspectRatio)

	// 4. Ресайзим используя Lanczos3 (качественный алгоритм)
	resized := resize.Resize(uint(maxWidth), newHeight, img, resize.Lanczos3)

	// 5. Кодируем в JPEG
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, false, fmt.Errorf("encode resized image: %w", err)
	}

	return buf.Bytes(), true, nil
}
