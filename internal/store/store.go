package store

import (
	"context"
	"errors"
	"io"

	"github.com/Karm-Dave/StoryGen/internal/model"
)

// ErrStoryNotFound - история с указанным ID не найдена в хранилище.
var ErrStoryNotFound = errors.New("story not found")

// StoryStore определяет контракт хранилища историй. Единица хранения -
// директория stories/<id> с файлом story.json и копиями изображений.
type StoryStore interface {
	// List перечисляет все сохраненные истории. Нечитаемый или
	// некорректный документ пропускается (с логированием), не фатален.
	List(ctx context.Context) ([]model.Story, error)
	// Get возвращает одну историю или ErrStoryNotFound.
	Get(ctx context.Context, id string) (model.Story, error)
	// Save создает единицу хранения при необходимости и перезаписывает
	// документ целиком. Идемпотентна.
	Save(ctx context.Context, story model.Story) error
	// Delete рекурсивно удаляет единицу хранения вместе с файлами.
	// Возвращает ErrStoryNotFound, если ее нет.
	Delete(ctx context.Context, id string) error
	// SaveImage копирует файл изображения внутрь единицы хранения.
	SaveImage(ctx context.Context, id, filename string, r io.Reader) error
}
