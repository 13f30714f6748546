package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmorganca/ollama/api"
	"go.uber.org/zap"
)

// ollamaClient реализует Client с использованием ollama/api.
// Локальная модель: стоимость не считаем, usage берем из eval counters.
type ollamaClient struct {
	client    *api.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

func newOllamaClient(cfg Config, logger *zap.Logger) (*ollamaClient, error) {
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	// api.NewClient требует URL без суффикса /v1
	ollamaBaseURL := strings.TrimSuffix(cfg.BaseURL, "/v1")
	ollamaBaseURL = strings.TrimSuffix(ollamaBaseURL, "/")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(ollamaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", ollamaBaseURL, err)
	}

	return &ollamaClient{
		client:    api.NewClient(parsedURL, httpClient),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger.Named("OllamaClient"),
	}, nil
}

// DescribeImage отправляет изображение нативным полем Images.
func (c *ollamaClient) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	messages := []api.Message{
		{
			Role:    "user",
			Content: describeImagePrompt,
			Images:  []api.ImageData{image},
		},
	}
	return c.chat(ctx, "describe_image", messages)
}

// ComposeStory генерирует текст истории.
func (c *ollamaClient) ComposeStory(ctx context.Context, prompt, genre, language string) (string, error) {
	messages := []api.Message{
		{Role: "user", Content: storyPrompt(prompt, genre, language)},
	}
	return c.chat(ctx, "compose_story", messages)
}

// ComposeTitle генерирует сырой заголовок.
func (c *ollamaClient) ComposeTitle(ctx context.Context, prompt string) (string, error) {
	messages := []api.Message{
		{Role: "user", Content: titlePrompt(prompt)},
	}
	return c.chat(ctx, "compose_title", messages)
}

// chat выполняет один нестриминговый запрос к Ollama.
func (c *ollamaClient) chat(ctx context.Context, operation string, messages []api.Message) (string, error) {
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   func(b bool) *bool { return &b }(false),
		Options: map[string]interface{}{
			"num_predict": c.maxTokens,
		},
	}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()

	var resp api.ChatResponse
	err := c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		// Сохраняем последний (полный) ответ
		resp = r
		return nil
	})

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Ошибка от Ollama API",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		aiRequestsTotal.WithLabelValues(c.model, operation, "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if resp.Message.Content == "" {
		c.logger.Error("Ollama API вернул пустой ответ",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
		)
		aiRequestsTotal.WithLabelValues(c.model, operation, "error_empty_response").Inc()
		return "", fmt.Errorf("%w: получен пустой ответ", ErrGenerationFailed)
	}

	aiRequestsTotal.WithLabelValues(c.model, operation, "success").Inc()
	aiRequestDuration.WithLabelValues(c.model, operation).Observe(duration.Seconds())

	promptTokens := resp.PromptEvalCount
	completionTokens := resp.EvalCount
	if promptTokens == 0 && completionTokens == 0 {
		completionTokens = countTokens(c.model, resp.Message.Content)
	}
	observeUsage(c.model, promptTokens, completionTokens)

	c.logger.Debug("Ответ от Ollama API получен",
		zap.String("operation", operation),
		zap.Duration("duration", duration),
		zap.Int("responseChars", len(resp.Message.Content)),
	)

	return resp.Message.Content, nil
}
