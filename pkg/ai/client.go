package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrGenerationFailed - ошибка при обращении к генеративной модели.
// Все ошибки клиентов оборачивают ее, чтобы слой HTTP мог отличить сбой
// генерации от прочих ошибок.
var ErrGenerationFailed = errors.New("ошибка генерации текста AI")

// Client интерфейс для взаимодействия с генеративной моделью.
// Каждый вызов - одна попытка без автоматических повторов; таймаут
// задается конфигурацией клиента.
type Client interface {
	// DescribeImage описывает основные элементы изображения в нескольких словах.
	DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error)
	// ComposeStory генерирует текст истории по промпту с учетом жанра и языка.
	ComposeStory(ctx context.Context, prompt, genre, language string) (string, error)
	// ComposeTitle генерирует сырой заголовок истории. Очистка заголовка -
	// ответственность вызывающего.
	ComposeTitle(ctx context.Context, prompt string) (string, error)
}

// Config содержит конфигурацию для клиента генеративной модели.
type Config struct {
	ClientType string // openai или ollama
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxTokens  int
}

// New создает клиента указанного типа.
func New(cfg Config, logger *zap.Logger) (Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("не указана модель AI")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}

	switch cfg.ClientType {
	case "openai":
		logger.Info("Используется реализация AI клиента: OpenAI",
			zap.String("baseURL", cfg.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return newOpenAIClient(cfg, logger)
	case "ollama":
		logger.Info("Используется реализация AI клиента: Ollama",
			zap.String("baseURL", cfg.BaseURL),
			zap.String("model", cfg.Model),
			zap.Duration("timeout", cfg.Timeout),
		)
		return newOllamaClient(cfg, logger)
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.ClientType)
	}
}
