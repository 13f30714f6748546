package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// AIClient мок для ai.Client.
type AIClient struct {
	mock.Mock
}

func (m *AIClient) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

func (m *AIClient) ComposeStory(ctx context.Context, prompt, genre, language string) (string, error) {
	args := m.Called(ctx, prompt, genre, language)
	return args.String(0), args.Error(1)
}

func (m *AIClient) ComposeTitle(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
