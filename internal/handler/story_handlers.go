package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Karm-Dave/StoryGen/internal/model"
	"github.com/Karm-Dave/StoryGen/internal/service"
)

// imagesFromForm извлекает файлы поля "images" из multipart формы.
// Отсутствие формы или поля не ошибка: валидация количества - дело сервиса.
func imagesFromForm(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["images"]
}

// upload обрабатывает POST /api/upload.
func (h *StoryHandler) upload(c *gin.Context) {
	urls, err := h.service.SaveUploads(c.Request.Context(), imagesFromForm(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, UploadResponse{Files: urls})
}

// generate обрабатывает POST /api/generate: multipart изображения плюс
// поля prompt, genre, language, branching.
func (h *StoryHandler) generate(c *gin.Context) {
	branching, _ := strconv.ParseBool(c.PostForm("branching"))
	req := service.CreateRequest{
		Files:     imagesFromForm(c),
		Prompt:    c.PostForm("prompt"),
		Genre:     c.PostForm("genre"),
		Language:  c.PostForm("language"),
		Branching: branching,
	}

	story, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// listStories обрабатывает GET /api/stories.
func (h *StoryHandler) listStories(c *gin.Context) {
	stories, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

// getStory обрабатывает GET /api/stories/:id.
func (h *StoryHandler) getStory(c *gin.Context) {
	story, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// continueStory обрабатывает POST /api/stories/:id/continue.
// Тело может быть multipart (prompt + новые изображения) или JSON {prompt}.
func (h *StoryHandler) continueStory(c *gin.Context) {
	prompt, files := promptAndFiles(c)

	story, err := h.service.Continue(c.Request.Context(), c.Param("id"), prompt, files)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// endStory обрабатывает POST /api/stories/:id/end. Промпт опционален,
// пустое тело допустимо.
func (h *StoryHandler) endStory(c *gin.Context) {
	prompt, _ := promptAndFiles(c)

	story, err := h.service.End(c.Request.Context(), c.Param("id"), prompt)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

// deleteStory обрабатывает DELETE /api/stories/:id.
func (h *StoryHandler) deleteStory(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Story deleted successfully"})
}

// genres обрабатывает GET /api/genres.
func (h *StoryHandler) genres(c *gin.Context) {
	c.JSON(http.StatusOK, model.Genres())
}

// languages обрабатывает GET /api/languages.
func (h *StoryHandler) languages(c *gin.Context) {
	c.JSON(http.StatusOK, model.Languages())
}

// statistics обрабатывает GET /api/statistics (и алиас /api/stats).
func (h *StoryHandler) statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// promptAndFiles достает промпт и файлы из multipart либо JSON тела.
func promptAndFiles(c *gin.Context) (string, []*multipart.FileHeader) {
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return c.PostForm("prompt"), imagesFromForm(c)
	}

	var req PromptRequest
	// Пустое тело или не-JSON тело равносильно пустому промпту
	_ = c.ShouldBindJSON(&req)
	return req.Prompt, nil
}
