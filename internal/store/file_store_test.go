package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Karm-Dave/StoryGen/internal/model"
	"github.com/Karm-Dave/StoryGen/internal/store"
)

func newTestStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func sampleStory(id string) model.Story {
	createdAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	return model.Story{
		SchemaVersion: model.CurrentSchemaVersion,
		ID:            id,
		Title:         "The Last Voyage",
		Story:         "Once upon a time there was a ship.",
		Genre:         "fantasy",
		Language:      "english",
		ImageURLs:     []string{"/uploads/a.jpg", "/uploads/b.png"},
		IsComplete:    false,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestFileStoreSaveGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved := sampleStory("1715342400000")
	require.NoError(t, s.Save(ctx, saved))

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestFileStoreSaveIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	story := sampleStory("100")
	require.NoError(t, s.Save(ctx, story))
	require.NoError(t, s.Save(ctx, story))

	stories, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, story, stories[0])
}

func TestFileStoreGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrStoryNotFound)
}

func TestFileStoreGetRejectsPathTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"", ".", "..", "../etc", "a/b", `a\b`} {
		_, err := s.Get(context.Background(), id)
		assert.ErrorIs(t, err, store.ErrStoryNotFound, "id=%q", id)
	}
}

func TestFileStoreListSkipsCorruptDocuments(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewFileStore(root, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleStory("1")))
	require.NoError(t, s.Save(ctx, sampleStory("2")))

	// Коррумпированный документ рядом с валидными
	corruptDir := filepath.Join(root, "3")
	require.NoError(t, os.MkdirAll(corruptDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(corruptDir, "story.json"), []byte("{not json"), 0o644))

	stories, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 2)

	ids := []string{stories[0].ID, stories[1].ID}
	assert.ElementsMatch(t, []string{"1", "2"}, ids)
}

func TestFileStoreListTakesIDFromDirectoryName(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewFileStore(root, zap.NewNop())
	require.NoError(t, err)

	dir := filepath.Join(root, "42")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	doc := `{"id": "something-else", "title": "T", "story": "s", "imageUrls": []}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "story.json"), []byte(doc), 0o644))

	stories, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "42", stories[0].ID)
	assert.Equal(t, model.CurrentSchemaVersion, stories[0].SchemaVersion)
}

func TestFileStoreNormalizesImageURLs(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewFileStore(root, zap.NewNop())
	require.NoError(t, err)

	dir := filepath.Join(root, "7")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	doc := `{"title": "T", "story": "s", "imageUrls": ["uploads/a.jpg", "", "/uploads/b.png", "c.gif"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "story.json"), []byte(doc), 0o644))

	got, err := s.Get(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.png", "/uploads/c.gif"}, got.ImageURLs)
}

func TestFileStoreDelete(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewFileStore(root, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	story := sampleStory("55")
	require.NoError(t, s.Save(ctx, story))
	require.NoError(t, s.SaveImage(ctx, story.ID, "img.jpg", strings.NewReader("fake-bytes")))

	require.NoError(t, s.Delete(ctx, story.ID))

	// Единица хранения удалена целиком, вместе с изображениями
	_, statErr := os.Stat(filepath.Join(root, "55"))
	assert.True(t, os.IsNotExist(statErr))

	stories, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestFileStoreDeleteNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrStoryNotFound)
}

func TestFileStoreSaveImage(t *testing.T) {
	root := t.TempDir()
	s, err := store.NewFileStore(root, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleStory("9")))
	require.NoError(t, s.SaveImage(ctx, "9", "photo.png", strings.NewReader("png-bytes")))

	data, err := os.ReadFile(filepath.Join(root, "9", "photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestFileStoreConcurrentSavesOfDifferentIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleStory("a1")
	second := sampleStory("a2")
	second.Title = "Another Tale"

	done := make(chan error, 2)
	go func() { done <- s.Save(ctx, first) }()
	go func() { done <- s.Save(ctx, second) }()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	gotFirst, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	gotSecond, err := s.Get(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, first, gotFirst)
	assert.Equal(t, second, gotSecond)
}
