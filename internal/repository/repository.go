package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	User    UserRepository
	Product ProductRepository
	Article ArticleRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Product: NewProductRepository(db),
		Article: NewArticleRepository(db),
	}
}
