package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// openAIClient реализует Client с использованием go-openai. Работает с любым
// OpenAI-совместимым API (OpenRouter, DeepSeek и т.д.) через BaseURL.
type openAIClient struct {
	client    *openaigo.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

func newOpenAIClient(cfg Config, logger *zap.Logger) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("не указан API ключ для OpenAI клиента")
	}

	openaiConfig := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	openaiConfig.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}

	return &openAIClient{
		client:    openaigo.NewClientWithConfig(openaiConfig),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("OpenAIClient"),
	}, nil
}

// DescribeImage отправляет изображение как data URL в составном сообщении.
func (c *openAIClient) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	messages := []openaigo.ChatCompletionMessage{
		{
			Role: openaigo.ChatMessageRoleUser,
			MultiContent: []openaigo.ChatMessagePart{
				{
					Type: openaigo.ChatMessagePartTypeText,
					Text: describeImagePrompt,
				},
				{
					Type: openaigo.ChatMessagePartTypeImageURL,
					ImageURL: &openaigo.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openaigo.ImageURLDetailAuto,
					},
				},
			},
		},
	}

	return c.complete(ctx, "describe_image", messages)
}

// ComposeStory генерирует текст истории.
func (c *openAIClient) ComposeStory(ctx context.Context, prompt, genre, language string) (string, error) {
	messages := []openaigo.ChatCompletionMessage{
		{
			Role:    openaigo.ChatMessageRoleUser,
			Content: storyPrompt(prompt, genre, language),
		},
	}
	return c.complete(ctx, "compose_story", messages)
}

// ComposeTitle генерирует сырой заголовок.
func (c *openAIClient) ComposeTitle(ctx context.Context, prompt string) (string, error) {
	messages := []openaigo.ChatCompletionMessage{
		{
			Role:    openaigo.ChatMessageRoleUser,
			Content: titlePrompt(prompt),
		},
	}
	return c.complete(ctx, "compose_title", messages)
}

// complete выполняет один запрос без повторов и записывает метрики.
func (c *openAIClient) complete(ctx context.Context, operation string, messages []openaigo.ChatCompletionMessage) (string, error) {
	startTime := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: c.maxTokens,
	})

	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("Ошибка от AI API",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		aiRequestsTotal.WithLabelValues(c.model, operation, "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.logger.Error("AI API вернул пустой ответ",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
		)
		aiRequestsTotal.WithLabelValues(c.model, operation, "error_empty_response").Inc()
		return "", fmt.Errorf("%w: получен пустой ответ", ErrGenerationFailed)
	}

	aiRequestsTotal.WithLabelValues(c.model, operation, "success").Inc()
	aiRequestDuration.WithLabelValues(c.model, operation).Observe(duration.Seconds())

	generatedText := resp.Choices[0].Message.Content

	promptTokens := resp.Usage.PromptTokens
	completionTokens := resp.Usage.CompletionTokens
	if resp.Usage.TotalTokens == 0 {
		// Прокси без usage: считаем локально
		completionTokens = countTokens(c.model, generatedText)
	}
	observeUsage(c.model, promptTokens, completionTokens)
	observeCost(c.model, promptTokens, completionTokens)

	c.logger.Debug("Ответ от AI API получен",
		zap.String("operation", operation),
		zap.Duration("duration", duration),
		zap.Int("responseChars", len(generatedText)),
		zap.Int("promptTokens", promptTokens),
		zap.Int("completionTokens", completionTokens),
	)

	return generatedText, nil
}
