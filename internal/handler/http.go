package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Karm-Dave/StoryGen/internal/service"
)

// StoryHandler обрабатывает HTTP запросы к историям.
type StoryHandler struct {
	service *service.StoryService
	logger  *zap.Logger
}

// NewStoryHandler создает новый StoryHandler.
func NewStoryHandler(s *service.StoryService, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		service: s,
		logger:  logger.Named("StoryHandler"),
	}
}

// RegisterRoutes регистрирует маршруты API.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/upload", h.upload)
		api.POST("/generate", h.generate)
		api.POST("/generate-story", h.generate) // исторический алиас

		api.GET("/stories", h.listStories)
		api.GET("/stories/:id", h.getStory)
		api.POST("/stories/:id/continue", h.continueStory)
		api.POST("/stories/:id/end", h.endStory)
		api.DELETE("/stories/:id", h.deleteStory)

		api.GET("/genres", h.genres)
		api.GET("/languages", h.languages)

		api.GET("/statistics", h.statistics)
		api.GET("/stats", h.statistics) // исторический алиас
	}
}
