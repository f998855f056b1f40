package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/lib/logger/sl"
	"github.com/eternal-silence00/Black-Needle/internal/repository"
	"github.com/eternal-silence00/Black-Needle/internal/transport/http/dto"

	"github.com/google/uuid"
)

type ArticleService struct {
	log  *slog.Logger
	repo repository.ArticleRepository
}

func NewArticleService(log *slog.Logger, repo repository.ArticleRepository) *ArticleService {
	return &ArticleService{log: log, repo: repo}
}

func (s *ArticleService) CreateArticle(ctx context.Context, req dto.ArticleCreateRequest) (models.Article, error) {
	const op = "article_service.CreateArticle"

	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	article := models.Article{
		ID:        uuid.New(),
		Title:     req.Title,
		Intro:     req.Intro,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}

	if err := article.Validate(); err != nil {
		log.Warn("article validation failed", sl.Err(err))
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.SaveArticle(ctx, article)
	if err != nil {
		log.Error("failed to create article", sl.Err(err))
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("article created", slog.String("article_id", id.String()))

	return s.repo.Article(ctx, id)
}

func (s *ArticleService) Article(ctx context.Context, id uuid.UUID) (models.Article, error) {
	const op = "article_service.Article"

	article, err := s.repo.Article(ctx, id)
	if err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	return article, nil
}

func (s *ArticleService) Articles(ctx context.Context) ([]models.Article, error) {
	const op = "article_service.Articles"

	articles, err := s.repo.Articles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return articles, nil
}

func (s *ArticleService) UpdateArticle(ctx context.Context, id uuid.UUID, req dto.ArticleUpdateRequest) (models.Article, error) {
	const op = "article_service.UpdateArticle"

	log := s.log.With(
		slog.String("op", op),
		slog.String("article_id", id.String()),
	)

	updates := make(map[string]interface{})

	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > 100 {
			return models.Article{}, fmt.Errorf("%s: %w", op,
				&models.ValidationError{Field: "title", Message: "title must be 1-100 characters"})
		}
		updates["title"] = *req.Title
	}
	if req.Intro != nil {
		if *req.Intro == "" || len(*req.Intro) > 300 {
			return models.Article{}, fmt.Errorf("%s: %w", op,
				&models.ValidationError{Field: "intro", Message: "intro must be 1-300 characters"})
		}
		updates["intro"] = *req.Intro
	}
	if req.Body != nil {
		if *req.Body == "" {
			return models.Article{}, fmt.Errorf("%s: %w", op,
				&models.ValidationError{Field: "body", Message: "body is required"})
		}
		updates["body"] = *req.Body
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			log.Error("failed to update article", sl.Err(err))
			return models.Article{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("article updated")

	return s.repo.Article(ctx, id)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	const op = "article_service.DeleteArticle"

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("article deleted",
		slog.String("op", op),
		slog.String("article_id", id.String()),
	)

	return nil
}
