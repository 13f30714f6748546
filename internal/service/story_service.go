package service

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Karm-Dave/StoryGen/internal/config"
	"github.com/Karm-Dave/StoryGen/internal/model"
	"github.com/Karm-Dave/StoryGen/internal/store"
	"github.com/Karm-Dave/StoryGen/pkg/ai"
)

// StoryService оркестрирует вызовы генеративной модели и хранилища.
// Никакого состояния между запросами не держит.
type StoryService struct {
	store       store.StoryStore
	ai          ai.Client
	logger      *zap.Logger
	uploadsDir  string
	maxFiles    int
	maxFileSize int64
}

// NewStoryService создает новый StoryService.
func NewStoryService(st store.StoryStore, aiClient ai.Client, uploadsDir string, uploadCfg config.UploadConfig, logger *zap.Logger) *StoryService {
	return &StoryService{
		store:       st,
		ai:          aiClient,
		logger:      logger.Named("StoryService"),
		uploadsDir:  uploadsDir,
		maxFiles:    uploadCfg.MaxFiles,
		maxFileSize: uploadCfg.MaxFileSizeBytes,
	}
}

// CreateRequest параметры создания истории.
type CreateRequest struct {
	Files     []*multipart.FileHeader
	Prompt    string
	Genre     string
	Language  string
	Branching bool
}

// SaveUploads проверяет и сохраняет изображения без создания истории.
// Используется эндпоинтом /api/upload.
func (s *StoryService) SaveUploads(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if err := s.validateUploads(files, true); err != nil {
		return nil, err
	}
	uploads, err := readUploads(files)
	if err != nil {
		return nil, err
	}
	if err := s.writeUploads(uploads); err != nil {
		return nil, err
	}

	urls := make([]string, len(uploads))
	for i, u := range uploads {
		urls[i] = u.URL()
	}
	return urls, nil
}

// Create генерирует новую историю: описывает каждое изображение, собирает
// текст и заголовок, сохраняет запись. Изображения обязательны.
func (s *StoryService) Create(ctx context.Context, req CreateRequest) (model.Story, error) {
	if err := s.validateUploads(req.Files, true); err != nil {
		return model.Story{}, err
	}

	genre := req.Genre
	if genre == "" {
		genre = "general"
	}
	language := req.Language
	if language == "" {
		language = "english"
	}

	uploads, err := readUploads(req.Files)
	if err != nil {
		return model.Story{}, err
	}
	if err := s.writeUploads(uploads); err != nil {
		return model.Story{}, err
	}

	descriptions, err := s.describeAll(ctx, uploads)
	if err != nil {
		return model.Story{}, err
	}

	fullPrompt := fmt.Sprintf("%s\n\nImages show: %s", req.Prompt, strings.Join(descriptions, ", "))

	// Текст и заголовок генерируются параллельно. Неудачный заголовок не
	// валит создание: подставляется заглушка.
	var (
		wg        sync.WaitGroup
		storyText string
		rawTitle  string
		storyErr  error
		titleErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		storyText, storyErr = s.ai.ComposeStory(ctx, fullPrompt, genre, language)
	}()
	go func() {
		defer wg.Done()
		rawTitle, titleErr = s.ai.ComposeTitle(ctx, fullPrompt)
	}()
	wg.Wait()

	if storyErr != nil {
		return model.Story{}, storyErr
	}

	title := model.DefaultTitle
	if titleErr != nil {
		s.logger.Warn("Title generation failed, using placeholder", zap.Error(titleErr))
	} else {
		title = CleanTitle(rawTitle)
	}

	now := time.Now().UTC()
	story := model.Story{
		SchemaVersion: model.CurrentSchemaVersion,
		ID:            strconv.FormatInt(now.UnixMilli(), 10),
		Title:         title,
		Story:         storyText,
		Genre:         genre,
		Language:      language,
		Branching:     req.Branching,
		ImageURLs:     uploadURLs(uploads),
		IsComplete:    false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Save(ctx, story); err != nil {
		return model.Story{}, err
	}
	s.copyIntoStoryUnit(ctx, story.ID, uploads)

	s.logger.Info("Story created",
		zap.String("id", story.ID),
		zap.String("title", story.Title),
		zap.Int("images", len(story.ImageURLs)),
	)
	return story, nil
}

// Continue дописывает историю: контекстом служит весь прежний текст плюс
// новый промпт и описания новых изображений. Новые изображения опциональны.
func (s *StoryService) Continue(ctx context.Context, id, prompt string, files []*multipart.FileHeader) (model.Story, error) {
	story, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Story{}, err
	}

	if err := s.validateUploads(files, false); err != nil {
		return model.Story{}, err
	}
	uploads, err := readUploads(files)
	if err != nil {
		return model.Story{}, err
	}
	if err := s.writeUploads(uploads); err != nil {
		return model.Story{}, err
	}

	descriptions, err := s.describeAll(ctx, uploads)
	if err != nil {
		return model.Story{}, err
	}

	fullPrompt := story.Story + "\n\n" + prompt
	if len(descriptions) > 0 {
		fullPrompt += "\n\nNew images show: " + strings.Join(descriptions, ", ")
	}

	continuation, err := s.ai.ComposeStory(ctx, fullPrompt, "", "")
	if err != nil {
		return model.Story{}, err
	}

	story.Story = story.Story + "\n\n" + continuation
	story.ImageURLs = append(story.ImageURLs, uploadURLs(uploads)...)
	story.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, story); err != nil {
		return model.Story{}, err
	}
	s.copyIntoStoryUnit(ctx, story.ID, uploads)

	s.logger.Info("Story continued", zap.String("id", story.ID))
	return story, nil
}

// End генерирует заключение и помечает историю завершенной. Повторный вызов
// допишет второе заключение: так ведет себя и исходная система, защиты нет
// намеренно.
func (s *StoryService) End(ctx context.Context, id, prompt string) (model.Story, error) {
	story, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Story{}, err
	}

	base := story.Story
	if prompt != "" {
		base += "\n\n" + prompt
	}

	ending, err := s.ai.ComposeStory(ctx, "Write a satisfying conclusion to this story: "+base, "", "")
	if err != nil {
		return model.Story{}, err
	}

	now := time.Now().UTC()
	story.Story = story.Story + "\n\n" + ending
	story.IsComplete = true
	story.UpdatedAt = now
	story.CompletedAt = &now

	if err := s.store.Save(ctx, story); err != nil {
		return model.Story{}, err
	}

	s.logger.Info("Story completed", zap.String("id", story.ID))
	return story, nil
}

// List возвращает все истории, новые первыми.
func (s *StoryService) List(ctx context.Context) ([]model.Story, error) {
	stories, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})
	return stories, nil
}

// Get возвращает одну историю.
func (s *StoryService) Get(ctx context.Context, id string) (model.Story, error) {
	return s.store.Get(ctx, id)
}

// Delete удаляет историю вместе со всеми файлами ее единицы хранения.
func (s *StoryService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Statistics агрегирует показатели по всем читаемым историям.
func (s *StoryService) Statistics(ctx context.Context) (model.Statistics, error) {
	stories, err := s.store.List(ctx)
	if err != nil {
		return model.Statistics{}, err
	}

	stats := model.Statistics{
		GenreDistribution:    make(map[string]int),
		LanguageDistribution: make(map[string]int),
	}

	for i := range stories {
		story := &stories[i]

		genre := story.Genre
		if genre == "" {
			genre = "general"
		}
		stats.GenreDistribution[genre]++

		language := story.Language
		if language == "" {
			language = "english"
		}
		stats.LanguageDistribution[language]++

		stats.TotalImages += len(story.ImageURLs)
		stats.TotalWords += story.WordCount()
		stats.TotalStories++
	}

	if stats.TotalStories > 0 {
		stats.AverageLength = int(float64(stats.TotalWords)/float64(stats.TotalStories) + 0.5)
	}
	return stats, nil
}

// describeAll описывает изображения параллельно. Каждое описание -
// независимая единица работы: ошибка одного изображения не затирает
// результаты остальных, а возвращается со ссылкой на файл.
func (s *StoryService) describeAll(ctx context.Context, uploads []upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	descriptions := make([]string, len(uploads))
	errs := make([]error, len(uploads))

	var wg sync.WaitGroup
	for i := range uploads {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			descriptions[i], errs[i] = s.ai.DescribeImage(ctx, uploads[i].data, uploads[i].mimeType)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("описание изображения %s: %w", uploads[i].storedName, err)
		}
	}
	return descriptions, nil
}

// copyIntoStoryUnit кладет копии изображений внутрь директории истории,
// чтобы единица хранения была самодостаточной. Ошибка копии не валит
// запрос: ссылки указывают на /uploads.
func (s *StoryService) copyIntoStoryUnit(ctx context.Context, id string, uploads []upload) {
	for _, u := range uploads {
		if err := s.store.SaveImage(ctx, id, u.storedName, bytes.NewReader(u.data)); err != nil {
			s.logger.Warn("Failed to copy image into story unit",
				zap.String("id", id),
				zap.String("file", u.storedName),
				zap.Error(err),
			)
		}
	}
}

func uploadURLs(uploads []upload) []string {
	urls := make([]string, len(uploads))
	for i, u := range uploads {
		urls[i] = u.URL()
	}
	return urls
}
