package service

import "errors"

// Ошибки валидации загрузки. Проверяются синхронно до любой записи на диск
// и до любого обращения к генеративной модели.
var (
	ErrNoImages        = errors.New("no images uploaded")
	ErrTooManyFiles    = errors.New("too many files: maximum 5 files allowed")
	ErrFileTooLarge    = errors.New("file too large: maximum size is 4MB")
	ErrInvalidFileType = errors.New("invalid file type: only JPEG, PNG and GIF are allowed")
)
