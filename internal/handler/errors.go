package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Karm-Dave/StoryGen/internal/service"
	"github.com/Karm-Dave/StoryGen/internal/store"
	"github.com/Karm-Dave/StoryGen/pkg/ai"
)

// handleServiceError преобразует ошибку сервисного слоя в HTTP ответ.
// Ошибки генерации отдают сообщение модели для диагностики; все прочее
// сворачивается в общий ответ без деталей.
func (h *StoryHandler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp ErrorResponse

	switch {
	case errors.Is(err, service.ErrNoImages):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Error: "No images uploaded"}
	case errors.Is(err, service.ErrTooManyFiles):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Error: "Too many files", Message: "Maximum 5 files allowed"}
	case errors.Is(err, service.ErrFileTooLarge):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Error: "File too large", Message: "Maximum file size is 4MB"}
	case errors.Is(err, service.ErrInvalidFileType):
		statusCode = http.StatusBadRequest
		errResp = ErrorResponse{Error: "Invalid file", Message: "Only JPEG, PNG and GIF are allowed"}
	case errors.Is(err, store.ErrStoryNotFound):
		statusCode = http.StatusNotFound
		errResp = ErrorResponse{Error: "Story not found"}
	case errors.Is(err, ai.ErrGenerationFailed):
		h.logger.Error("Generation failed", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Error: "Failed to generate story", Message: err.Error()}
	default:
		h.logger.Error("Unhandled internal error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = ErrorResponse{Error: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
