package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eternal-silence00/Black-Needle/internal/domain/models"
	"github.com/eternal-silence00/Black-Needle/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type ProductRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var productColumns = []string{
	"id", "title", "price", "is_active", "body",
	"artist", "genre", "release_year", "views", "created_at",
}

// CreateWithImages inserts the product row and its image rows in one
// transaction: either everything commits or nothing does.
func (r *ProductRepo) CreateWithImages(ctx context.Context, product models.Product, filenames []string) (uuid.UUID, error) {
	const op = "repository.product_repository.CreateWithImages"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Insert("products").
		Columns(productColumns...).
		Values(
			product.ID,
			product.Title,
			product.Price,
			product.IsActive,
			product.Body,
			product.Artist,
			product.Genre,
			product.ReleaseYear,
			product.Views,
			product.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := insertImages(ctx, tx, r.sb, id, filenames); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return id, nil
}

func (r *ProductRepo) Product(ctx context.Context, id uuid.UUID) (models.Product, error) {
	const op = "repository.product_repository.Product"

	query, args, err := r.sb.Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var p models.Product
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Title, &p.Price, &p.IsActive, &p.Body,
		&p.Artist, &p.Genre, &p.ReleaseYear, &p.Views, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	images, err := r.images(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	p.Images = images

	return p, nil
}

func (r *ProductRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.product_repository.Update"

	allowedFields := map[string]bool{
		"title":        true,
		"price":        true,
		"is_active":    true,
		"body":         true,
		"artist":       true,
		"genre":        true,
		"release_year": true,
	}

	if len(updates) == 0 {
		return fmt.Errorf("%s: no fields to update", op)
	}

	updateBuilder := r.sb.Update("products")

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

// ReplaceImages swaps the product's image rows for a new set in one
// transaction and returns the filenames of the removed rows so the
// caller can clean up the backing files.
func (r *ProductRepo) ReplaceImages(ctx context.Context, id uuid.UUID, filenames []string) ([]string, error) {
	const op = "repository.product_repository.ReplaceImages"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Delete("product_images").
		Where(sq.Eq{"product_id": id}).
		Suffix("RETURNING filename").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var removed []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		removed = append(removed, filename)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := insertImages(ctx, tx, r.sb, id, filenames); err != nil {
		// An unknown product id trips the foreign key on insert
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return removed, nil
}

// Delete removes the product and its image rows, returning the stored
// filenames. Rows go first so a crash leaves at most orphaned files,
// never rows pointing at deleted files.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	const op = "repository.product_repository.Delete"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Delete("product_images").
		Where(sq.Eq{"product_id": id}).
		Suffix("RETURNING filename").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var filenames []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		filenames = append(filenames, filename)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err = r.sb.Delete("products").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return filenames, nil
}

// IncrementViews bumps the counter in SQL so concurrent detail views
// never corrupt the row.
func (r *ProductRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	const op = "repository.product_repository.IncrementViews"

	query, args, err := r.sb.Update("products").
		Set("views", sq.Expr("views + 1")).
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

// Query executes a catalog plan: conjunctive filters, deterministic sort
// with an id tie-break, limit/offset pagination, plus a count over the
// same predicate set.
func (r *ProductRepo) Query(ctx context.Context, filter models.CatalogFilter) ([]models.Product, int, error) {
	const op = "repository.product_repository.Query"

	queryBuilder := applyFilter(r.sb.Select(productColumns...).From("products"), filter)

	totalCount, err := r.count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	queryBuilder = queryBuilder.
		OrderBy(sortClause(filter.Sort)...).
		Limit(uint64(filter.PerPage)).
		Offset(uint64((filter.Page - 1) * filter.PerPage))

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.Title, &p.Price, &p.IsActive, &p.Body,
			&p.Artist, &p.Genre, &p.ReleaseYear, &p.Views, &p.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	if err := r.attachImages(ctx, products); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return products, totalCount, nil
}

// Facets returns the distinct artist/genre/year lists over the entire
// catalog, independent of any applied filter.
func (r *ProductRepo) Facets(ctx context.Context) (models.Facets, error) {
	const op = "repository.product_repository.Facets"

	var facets models.Facets

	if err := r.distinctStrings(ctx, "artist", "artist ASC", &facets.Artists); err != nil {
		return models.Facets{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.distinctStrings(ctx, "genre", "genre ASC", &facets.Genres); err != nil {
		return models.Facets{}, fmt.Errorf("%s: %w", op, err)
	}

	query, args, err := r.sb.Select("DISTINCT release_year").
		From("products").
		OrderBy("release_year DESC").
		ToSql()
	if err != nil {
		return models.Facets{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return models.Facets{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return models.Facets{}, fmt.Errorf("%s: %w", op, err)
		}
		facets.Years = append(facets.Years, year)
	}

	if err := rows.Err(); err != nil {
		return models.Facets{}, fmt.Errorf("%s: rows iteration error: %w", op, err)
	}

	return facets, nil
}

func (r *ProductRepo) distinctStrings(ctx context.Context, column, order string, dst *[]string) error {
	query, args, err := r.sb.Select("DISTINCT " + column).
		From("products").
		OrderBy(order).
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build sql: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return err
		}
		*dst = append(*dst, value)
	}

	return rows.Err()
}

func (r *ProductRepo) count(ctx context.Context, filter models.CatalogFilter) (int, error) {
	query, args, err := applyFilter(r.sb.Select("COUNT(*)").From("products"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("can't build sql: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ProductRepo) images(ctx context.Context, productID uuid.UUID) ([]models.ProductImage, error) {
	query, args, err := r.sb.Select("id", "product_id", "filename").
		From("product_images").
		Where(sq.Eq{"product_id": productID}).
		OrderBy("filename ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("can't build sql: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Filename); err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	return images, rows.Err()
}

func (r *ProductRepo) attachImages(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	query, args, err := r.sb.Select("id", "product_id", "filename").
		From("product_images").
		Where(sq.Eq{"product_id": ids}).
		OrderBy("filename ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("can't build sql: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	byProduct := make(map[uuid.UUID][]models.ProductImage)
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.Filename); err != nil {
			return err
		}
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range products {
		products[i].Images = byProduct[products[i].ID]
	}

	return nil
}

func insertImages(ctx context.Context, tx pgx.Tx, sb sq.StatementBuilderType, productID uuid.UUID, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}

	builder := sb.Insert("product_images").
		Columns("id", "product_id", "filename")

	for _, filename := range filenames {
		builder = builder.Values(uuid.New(), productID, filename)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("can't build sql: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

func applyFilter(b sq.SelectBuilder, filter models.CatalogFilter) sq.SelectBuilder {
	if filter.ActiveOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}
	if filter.MinPrice != nil {
		b = b.Where(sq.GtOrEq{"price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		b = b.Where(sq.LtOrEq{"price": *filter.MaxPrice})
	}
	if len(filter.Artists) > 0 {
		b = b.Where(sq.Eq{"artist": filter.Artists})
	}
	if len(filter.Genres) > 0 {
		b = b.Where(sq.Eq{"genre": filter.Genres})
	}
	if len(filter.Years) > 0 {
		b = b.Where(sq.Eq{"release_year": filter.Years})
	}

	return b
}

// sortClause always ends with id ASC so equal primary keys paginate
// deterministically across requests.
func sortClause(sort models.Sort) []string {
	switch sort {
	case models.SortPriceAsc:
		return []string{"price ASC", "id ASC"}
	case models.SortPriceDesc:
		return []string{"price DESC", "id ASC"}
	case models.SortPopular:
		return []string{"views DESC", "id ASC"}
	case models.SortOld:
		return []string{"created_at ASC", "id ASC"}
	default:
		return []string{"created_at DESC", "id ASC"}
	}
}
