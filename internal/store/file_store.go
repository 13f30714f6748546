package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Karm-Dave/StoryGen/internal/model"
)

const storyFileName = "story.json"

// FileStore реализует StoryStore поверх файловой системы.
// Никакого кэша в памяти: каждое чтение идет с диска, поэтому две
// расходящиеся копии одних данных существовать не могут.
type FileStore struct {
	root   string
	logger *zap.Logger
}

// NewFileStore создает FileStore и гарантирует существование корневой директории.
func NewFileStore(root string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории историй %s: %w", root, err)
	}
	return &FileStore{
		root:   root,
		logger: logger.Named("FileStore"),
	}, nil
}

// validID отклоняет идентификаторы, способные выйти за пределы root.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\")
}

func (s *FileStore) storyDir(id string) string {
	return filepath.Join(s.root, id)
}

func (s *FileStore) storyPath(id string) string {
	return filepath.Join(s.root, id, storyFileName)
}

// List читает все story.json из корневой директории. Документ, который не
// удалось прочитать или распарсить, пропускается: листинг деградирует
// частично, а не падает целиком.
func (s *FileStore) List(ctx context.Context) ([]model.Story, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Story{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения директории историй: %w", err)
	}

	stories := make([]model.Story, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		story, err := s.readStory(entry.Name())
		if err != nil {
			s.logger.Warn("Skipping unreadable story",
				zap.String("id", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		stories = append(stories, story)
	}

	return stories, nil
}

// Get возвращает одну историю по ID.
func (s *FileStore) Get(ctx context.Context, id string) (model.Story, error) {
	if !validID(id) {
		return model.Story{}, ErrStoryNotFound
	}
	if _, err := os.Stat(s.storyPath(id)); err != nil {
		if os.IsNotExist(err) {
			return model.Story{}, ErrStoryNotFound
		}
		return model.Story{}, fmt.Errorf("ошибка доступа к истории %s: %w", id, err)
	}
	return s.readStory(id)
}

// Save записывает полный документ истории, перезаписывая предыдущий.
func (s *FileStore) Save(ctx context.Context, story model.Story) error {
	if !validID(story.ID) {
		return fmt.Errorf("некорректный ID истории: %q", story.ID)
	}
	if story.SchemaVersion == 0 {
		story.SchemaVersion = model.CurrentSchemaVersion
	}

	dir := s.storyDir(story.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания директории истории %s: %w", story.ID, err)
	}

	data, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации истории %s: %w", story.ID, err)
	}

	if err := os.WriteFile(s.storyPath(story.ID), data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи истории %s: %w", story.ID, err)
	}

	return nil
}

// Delete рекурсивно удаляет единицу хранения истории.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrStoryNotFound
	}
	dir := s.storyDir(id)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return ErrStoryNotFound
		}
		return fmt.Errorf("ошибка доступа к истории %s: %w", id, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("ошибка удаления истории %s: %w", id, err)
	}
	s.logger.Info("Story deleted", zap.String("id", id))
	return nil
}

// SaveImage копирует изображение внутрь единицы хранения истории.
func (s *FileStore) SaveImage(ctx context.Context, id, filename string, r io.Reader) error {
	if !validID(id) {
		return ErrStoryNotFound
	}
	if !validID(filename) {
		return fmt.Errorf("некорректное имя файла изображения: %q", filename)
	}
	dir := s.storyDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания директории истории %s: %w", id, err)
	}

	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("ошибка создания файла изображения %s: %w", filename, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return fmt.Errorf("ошибка копирования изображения %s: %w", filename, err)
	}
	return nil
}

// readStory парсит story.json и нормализует документ: ID всегда берется из
// имени директории, ссылки на изображения приводятся к виду /uploads/<имя>.
func (s *FileStore) readStory(id string) (model.Story, error) {
	data, err := os.ReadFile(s.storyPath(id))
	if err != nil {
		return model.Story{}, fmt.Errorf("ошибка чтения story.json: %w", err)
	}

	var story model.Story
	if err := json.Unmarshal(data, &story); err != nil {
		return model.Story{}, fmt.Errorf("ошибка парсинга story.json: %w", err)
	}

	// Имя директории - источник истины для ID
	story.ID = id
	if story.SchemaVersion == 0 {
		story.SchemaVersion = model.CurrentSchemaVersion
	}

	if story.ImageURLs != nil {
		normalized := make([]string, 0, len(story.ImageURLs))
		for _, url := range story.ImageURLs {
			if url == "" {
				continue
			}
			if !strings.HasPrefix(url, "/uploads/") {
				url = "/uploads/" + filepath.Base(url)
			}
			normalized = append(normalized, url)
		}
		story.ImageURLs = normalized
	}

	return story, nil
}
