package repository

import (
	"context"
	"time"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ProductRepository interface {
	CreateWithImages(ctx context.Context, product models.Product, filenames []string) (uuid.UUID, error)
	Product(ctx context.Context, id uuid.UUID) (models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ReplaceImages(ctx context.Context, id uuid.UUID, filenames []string) ([]string, error)
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Query(ctx context.Context, filter models.CatalogFilter) ([]models.Product, int, error)
	Facets(ctx context.Context) (models.Facets, error)
}

type ArticleRepository interface {
	SaveArticle(ctx context.Context, article models.Article) (uuid.UUID, error)
	Article(ctx context.Context, id uuid.UUID) (models.Article, error)
	Articles(ctx context.Context) ([]models.Article, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}
