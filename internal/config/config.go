package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/Karm-Dave/StoryGen/pkg/logger"
)

// Config структура для хранения всей конфигурации приложения.
type Config struct {
	AppEnv string `env:"APP_ENV" env-default:"development"`
	Port   string `env:"PORT" env-default:"5000"`
	Logger logger.Config

	// Пути хранения: директория на историю + директория загрузок
	StoriesDir string `env:"STORIES_DIR" env-default:"stories"`
	UploadsDir string `env:"UPLOADS_DIR" env-default:"uploads"`

	// Ограничения загрузки изображений
	Upload UploadConfig

	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" env-default:"http://localhost:5173"`

	// Настройки AI клиента
	AI AIConfig
}

// UploadConfig ограничения для загружаемых файлов.
type UploadConfig struct {
	MaxFileSizeBytes int64 `env:"MAX_UPLOAD_SIZE_BYTES" env-default:"4194304"` // 4MB
	MaxFiles         int   `env:"MAX_UPLOAD_FILES" env-default:"5"`
}

// AIConfig конфигурация для подключения к генеративной модели.
type AIConfig struct {
	ClientType string `env:"AI_CLIENT_TYPE" env-default:"openai"` // openai или ollama
	APIKey     string `env:"AI_API_KEY" env-default:""`
	BaseURL    string `env:"AI_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	Model      string `env:"AI_MODEL" env-default:"google/gemini-flash-1.5"`
	TimeoutSec int    `env:"AI_TIMEOUT_SEC" env-default:"120"`
	MaxTokens  int    `env:"AI_MAX_TOKENS" env-default:"4096"`
}

// Timeout возвращает таймаут AI запроса как time.Duration.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Load загружает конфигурацию из переменных окружения и .env файла.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if cfg.AI.ClientType == "openai" && cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY обязателен при AI_CLIENT_TYPE=openai")
	}

	return &cfg, nil
}
