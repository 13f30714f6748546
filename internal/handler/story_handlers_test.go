package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Karm-Dave/StoryGen/internal/config"
	"github.com/Karm-Dave/StoryGen/internal/handler"
	"github.com/Karm-Dave/StoryGen/internal/mocks"
	"github.com/Karm-Dave/StoryGen/internal/model"
	"github.com/Karm-Dave/StoryGen/internal/service"
	"github.com/Karm-Dave/StoryGen/internal/store"
)

type testServer struct {
	router *gin.Engine
	ai     *mocks.AIClient
	store  *store.FileStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	mockAI := new(mocks.AIClient)
	svc := service.NewStoryService(st, mockAI, t.TempDir(),
		config.UploadConfig{MaxFileSizeBytes: 4 << 20, MaxFiles: 5}, zap.NewNop())

	router := gin.New()
	handler.NewStoryHandler(svc, zap.NewNop()).RegisterRoutes(router)

	return &testServer{router: router, ai: mockAI, store: st}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func multipartBody(t *testing.T, fields map[string]string, images map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range images {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="images"; filename="`+name+`"`)
		header.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func seedStory(t *testing.T, st *store.FileStore, id string) model.Story {
	t.Helper()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	story := model.Story{
		SchemaVersion: model.CurrentSchemaVersion,
		ID:            id,
		Title:         "Seed",
		Story:         "Beginning.",
		Genre:         "general",
		Language:      "english",
		ImageURLs:     []string{"/uploads/x.jpg"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, st.Save(context.Background(), story))
	return story
}

func TestGenerateEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.ai.On("DescribeImage", mock.Anything, mock.Anything, "image/jpeg").Return("a castle", nil)
	ts.ai.On("ComposeStory", mock.Anything, mock.Anything, "fantasy", "english").Return("A tale.", nil)
	ts.ai.On("ComposeTitle", mock.Anything, mock.Anything).Return("Castle Nights", nil)

	body, contentType := multipartBody(t,
		map[string]string{"prompt": "knights", "genre": "fantasy", "language": "english"},
		map[string]string{"castle.jpg": "img-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)

	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var story model.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.Equal(t, "Castle Nights", story.Title)
	assert.Equal(t, "A tale.", story.Story)
	assert.False(t, story.IsComplete)
	assert.NotEmpty(t, story.ID)
}

func TestGenerateEndpointRequiresImages(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"prompt": "no pics"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/generate", body)
	req.Header.Set("Content-Type", contentType)

	w := ts.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No images uploaded")
}

func TestUploadEndpoint(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := multipartBody(t, nil, map[string]string{"pic.jpg": "bytes"})
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)

	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Files, 1)
	assert.True(t, strings.HasPrefix(resp.Files[0], "/uploads/"))
}

func TestGetStoryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedStory(t, ts.store, "777")

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/stories/777", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var story model.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.Equal(t, "777", story.ID)
}

func TestGetStoryEndpointNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/stories/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Story not found")
}

func TestListStoriesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedStory(t, ts.store, "1")
	seedStory(t, ts.store, "2")

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/stories", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stories []model.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stories))
	assert.Len(t, stories, 2)
}

func TestContinueEndpointWithJSONBody(t *testing.T) {
	ts := newTestServer(t)
	seeded := seedStory(t, ts.store, "10")

	ts.ai.On("ComposeStory", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "and then")
	}), "", "").Return("Next part.", nil)

	body := bytes.NewBufferString(`{"prompt": "and then"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stories/10/continue", body)
	req.Header.Set("Content-Type", "application/json")

	w := ts.do(req)
	require.Equal(t, http.StatusOK, w.Code)

	var story model.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.Equal(t, seeded.Story+"\n\nNext part.", story.Story)
}

func TestEndEndpointWithEmptyBody(t *testing.T) {
	ts := newTestServer(t)
	seedStory(t, ts.store, "20")

	ts.ai.On("ComposeStory", mock.Anything, mock.Anything, "", "").Return("The end.", nil)

	w := ts.do(httptest.NewRequest(http.MethodPost, "/api/stories/20/end", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var story model.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.True(t, story.IsComplete)
	require.NotNil(t, story.CompletedAt)
}

func TestDeleteStoryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedStory(t, ts.store, "30")

	w := ts.do(httptest.NewRequest(http.MethodDelete, "/api/stories/30", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Story deleted successfully")

	// Последующий листинг историю не содержит
	w = ts.do(httptest.NewRequest(http.MethodGet, "/api/stories", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stories []model.Story
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stories))
	assert.Empty(t, stories)
}

func TestDeleteStoryEndpointNotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodDelete, "/api/stories/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenresEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/genres", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var genres []model.CatalogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &genres))
	assert.Len(t, genres, 6)
	assert.Equal(t, "general", genres[0].ID)
}

func TestLanguagesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var languages []model.CatalogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &languages))
	assert.Len(t, languages, 5)
}

func TestStatisticsEndpointAliases(t *testing.T) {
	ts := newTestServer(t)
	seedStory(t, ts.store, "1")

	for _, path := range []string{"/api/statistics", "/api/stats"} {
		w := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code, path)

		var stats model.Statistics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 1, stats.TotalStories, path)
	}
}
