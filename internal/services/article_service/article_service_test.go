package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/storage"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) SaveArticle(ctx context.Context, article models.Article) (uuid.UUID, error) {
	args := m.Called(ctx, article)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockArticleRepository) Article(ctx context.Context, id uuid.UUID) (models.Article, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Article), args.Error(1)
}

func (m *MockArticleRepository) Articles(ctx context.Context) ([]models.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Article), args.Error(1)
}

func (m *MockArticleRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	args := m.Called(ctx, id, updates)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestArticleService_CreateArticle(t *testing.T) {
	ctx := context.Background()

	storedID := uuid.New()
	stored := models.Article{
		ID:        storedID,
		Title:     "On Repetition",
		Intro:     "Why the same three chords keep working",
		Body:      "Long form text",
		CreatedAt: time.Now().UTC(),
	}

	tests := []struct {
		name      string
		req       dto.ArticleCreateRequest
		mockSetup func(m *MockArticleRepository)
		wantField string
	}{
		{
			name: "success",
			req: dto.ArticleCreateRequest{
				Title: "On Repetition",
				Intro: "Why the same three chords keep working",
				Body:  "Long form text",
			},
			mockSetup: func(m *MockArticleRepository) {
				m.On("SaveArticle", ctx, mock.AnythingOfType("models.Article")).
					Return(storedID, nil).Once()
				m.On("Article", ctx, storedID).Return(stored, nil).Once()
			},
		},
		{
			name:      "missing title",
			req:       dto.ArticleCreateRequest{Intro: "i", Body: "b"},
			mockSetup: func(m *MockArticleRepository) {},
			wantField: "title",
		},
		{
			name: "intro too long",
			req: dto.ArticleCreateRequest{
				Title: "t",
				Intro: strings.Repeat("x", 301),
				Body:  "b",
			},
			mockSetup: func(m *MockArticleRepository) {},
			wantField: "intro",
		},
		{
			name:      "missing body",
			req:       dto.ArticleCreateRequest{Title: "t", Intro: "i"},
			mockSetup: func(m *MockArticleRepository) {},
			wantField: "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockArticleRepository)
			tt.mockSetup(mockRepo)

			service := NewArticleService(slog.Default(), mockRepo)

			article, err := service.CreateArticle(ctx, tt.req)
			if tt.wantField != "" {
				require.Error(t, err)

				var ve *models.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantField, ve.Field)

				mockRepo.AssertNotCalled(t, "SaveArticle")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, storedID, article.ID)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestArticleService_UpdateArticle(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockArticleRepository)
	service := NewArticleService(slog.Default(), mockRepo)

	id := uuid.New()
	newTitle := "Revised"

	mockRepo.On("Update", ctx, id, map[string]interface{}{"title": newTitle}).
		Return(nil).Once()
	mockRepo.On("Article", ctx, id).
		Return(models.Article{ID: id, Title: newTitle}, nil).Once()

	article, err := service.UpdateArticle(ctx, id, dto.ArticleUpdateRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, article.Title)

	mockRepo.AssertExpectations(t)
}

func TestArticleService_UpdateArticle_EmptyPatchSkipsWrite(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockArticleRepository)
	service := NewArticleService(slog.Default(), mockRepo)

	id := uuid.New()

	mockRepo.On("Article", ctx, id).Return(models.Article{ID: id}, nil).Once()

	_, err := service.UpdateArticle(ctx, id, dto.ArticleUpdateRequest{})
	require.NoError(t, err)

	mockRepo.AssertNotCalled(t, "Update")
}

func TestArticleService_UpdateArticle_RejectsEmptyTitle(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockArticleRepository)
	service := NewArticleService(slog.Default(), mockRepo)

	empty := ""

	_, err := service.UpdateArticle(ctx, uuid.New(), dto.ArticleUpdateRequest{Title: &empty})
	require.Error(t, err)

	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "title", ve.Field)
}

func TestArticleService_DeleteArticle_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockArticleRepository)
	service := NewArticleService(slog.Default(), mockRepo)

	id := uuid.New()

	mockRepo.On("Delete", ctx, id).Return(storage.ErrNotFound).Once()

	err := service.DeleteArticle(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestArticleService_Articles(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockArticleRepository)
	service := NewArticleService(slog.Default(), mockRepo)

	list := []models.Article{
		{ID: uuid.New(), Title: "Newest"},
		{ID: uuid.New(), Title: "Older"},
	}

	mockRepo.On("Articles", ctx).Return(list, nil).Once()

	articles, err := service.Articles(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, articles)
}
