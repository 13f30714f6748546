package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// allowedImageTypes типы изображений, разрешенные к загрузке.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// upload - прошедший валидацию загруженный файл, прочитанный в память.
type upload struct {
	storedName string
	mimeType   string
	data       []byte
}

// URL возвращает публичный путь файла.
func (u upload) URL() string {
	return "/uploads/" + u.storedName
}

// validateUploads синхронно проверяет заголовки multipart до любой записи
// на диск и до любого вызова модели.
func (s *StoryService) validateUploads(files []*multipart.FileHeader, required bool) error {
	if len(files) == 0 {
		if required {
			return ErrNoImages
		}
		return nil
	}
	if len(files) > s.maxFiles {
		return ErrTooManyFiles
	}
	for _, fh := range files {
		if fh.Size > s.maxFileSize {
			return ErrFileTooLarge
		}
		if !allowedImageTypes[fh.Header.Get("Content-Type")] {
			return ErrInvalidFileType
		}
	}
	return nil
}

// readUploads читает провалидированные файлы в память и назначает им
// уникальные имена: <unix-millis>-<uuid>-<очищенное имя>.
func readUploads(files []*multipart.FileHeader) ([]upload, error) {
	uploads := make([]upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия загруженного файла %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения загруженного файла %s: %w", fh.Filename, err)
		}

		sanitized := unsafeFilenameChars.ReplaceAllString(filepath.Base(fh.Filename), "_")
		uploads = append(uploads, upload{
			storedName: fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), sanitized),
			mimeType:   fh.Header.Get("Content-Type"),
			data:       data,
		})
	}
	return uploads, nil
}

// writeUploads сохраняет файлы в публичную директорию загрузок.
func (s *StoryService) writeUploads(uploads []upload) error {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания директории загрузок: %w", err)
	}
	for _, u := range uploads {
		if err := os.WriteFile(filepath.Join(s.uploadsDir, u.storedName), u.data, 0o644); err != nil {
			return fmt.Errorf("ошибка сохранения файла %s: %w", u.storedName, err)
		}
	}
	return nil
}
