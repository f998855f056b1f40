package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ArticleRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewArticleRepository(db *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ArticleRepo) SaveArticle(ctx context.Context, article models.Article) (uuid.UUID, error) {
	const op = "repository.article_repository.SaveArticle"

	query, args, err := r.sb.Insert("articles").
		Columns(
			"id",
			"title",
			"intro",
			"body",
			"created_at",
		).
		Values(
			article.ID,
			article.Title,
			article.Intro,
			article.Body,
			article.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *ArticleRepo) Article(ctx context.Context, id uuid.UUID) (models.Article, error) {
	const op = "repository.article_repository.Article"

	query, args, err := r.sb.Select("id", "title", "intro", "body", "created_at").
		From("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Article{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var a models.Article
	err = r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.Title, &a.Intro, &a.Body, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Article{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

// Articles returns every article, newest first.
func (r *ArticleRepo) Articles(ctx context.Context) ([]models.Article, error) {
	const op = "repository.article_repository.Articles"

	query, args, err := r.sb.Select("id", "title", "intro", "body", "created_at").
		From("articles").
		OrderBy("created_at DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var a models.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Intro, &a.Body, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return articles, nil
}

func (r *ArticleRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.article_repository.Update"

	allowedFields := map[string]bool{
		"title": true,
		"intro": true,
		"body":  true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := r.sb.Update("articles")

	for field, value := range updates {
		if !allowedFields[field] {
			return fmt.Errorf("%s: field '%s' is not allowed for update", op, field)
		}

		updateBuilder = updateBuilder.Set(field, value)
	}

	query, args, err := updateBuilder.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (r *ArticleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.article_repository.Delete"

	query, args, err := r.sb.Delete("articles").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
